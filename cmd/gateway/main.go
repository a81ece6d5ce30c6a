package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"storefront-gateway/internal/config"
	"storefront-gateway/internal/httpserver"
	authsvc "storefront-gateway/internal/service/auth"
	cartsvc "storefront-gateway/internal/service/cart"
	catalogsvc "storefront-gateway/internal/service/catalog"
	couponsvc "storefront-gateway/internal/service/coupon"
	ordersvc "storefront-gateway/internal/service/order"
	"storefront-gateway/internal/storage"
	"storefront-gateway/internal/upstream"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[gateway] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	store := storage.NewRedis(redisClient, cfg.StorePath)

	api := upstream.New(cfg.APIRoot, cfg.StorePath, logger)
	authService := authsvc.New(api, store,
		[]string{cartsvc.StorageKeyCart, cartsvc.StorageKeyCoupon}, logger)
	api.SetTokenSource(authService)
	api.SetUnauthorizedHook(authService.HandleUnauthorized)

	cartService := cartsvc.New(api, store, logger)
	orderService := ordersvc.New(api, store, cartService, logger)
	couponService := couponsvc.New(api, logger)
	catalogService := catalogsvc.New(api, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Cart:    cartService,
		Order:   orderService,
		Auth:    authService,
		Coupon:  couponService,
		Catalog: catalogService,
	}, httpserver.Options{
		CookieName:  cfg.CookieName,
		CORSOrigins: cfg.CORSOrigins,
		Store:       store,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

package httpserver

import (
	"context"
	"errors"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-gateway/internal/domain"
	authsvc "storefront-gateway/internal/service/auth"
	cartsvc "storefront-gateway/internal/service/cart"
	catalogsvc "storefront-gateway/internal/service/catalog"
	couponsvc "storefront-gateway/internal/service/coupon"
)

type cartService interface {
	Cart() domain.Cart
	Load(ctx context.Context) (domain.Cart, error)
	Add(ctx context.Context, productID string, qty int64) error
	Update(ctx context.Context, itemID, productID string, qty int64) error
	Remove(ctx context.Context, itemID string) error
	RemoveQuantity(ctx context.Context, itemID, productID string, removeQty int64) error
	Clear(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) (domain.Coupon, error)
	RemoveCoupon(ctx context.Context)
	CreateOrder(ctx context.Context, form cartsvc.OrderForm) (string, error)
}

type orderService interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	Pay(ctx context.Context, id string) (*domain.Order, error)
}

type authService interface {
	Login(ctx context.Context, username, password string) (authsvc.Credentials, error)
	Logout(ctx context.Context) error
	Check(ctx context.Context, token string) bool
	IsLoggedIn() bool
}

type couponAdmin interface {
	List(ctx context.Context, page int) domain.Result
	Create(ctx context.Context, draft couponsvc.CreateDraft) domain.Result
	Update(ctx context.Context, c domain.AdminCoupon) domain.Result
	Delete(ctx context.Context, id string) domain.Result
	Coupons() []domain.AdminCoupon
}

type catalogService interface {
	Products(ctx context.Context, page int) ([]domain.Product, catalogsvc.Pagination, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	LoadAdminProducts(ctx context.Context) domain.Result
	AdminProducts() []domain.Product
	SaveProduct(ctx context.Context, p domain.Product, isNew bool) domain.Result
	DeleteProduct(ctx context.Context, id string) domain.Result
	LoadOrders(ctx context.Context) domain.Result
	Orders() []domain.Order
	DeleteAllOrders(ctx context.Context) domain.Result
}

// Deps bundles the services the router exposes.
type Deps struct {
	Cart    cartService
	Order   orderService
	Auth    authService
	Coupon  couponAdmin
	Catalog catalogService
}

// buildRouter wires routes for the gateway.
func buildRouter(logger *log.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.Cart == nil || deps.Order == nil || deps.Auth == nil || deps.Coupon == nil || deps.Catalog == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}
	if opts.CookieName == "" {
		opts.CookieName = "storefront_token"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), requestID())

	if len(opts.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = opts.CORSOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(opts.Store))

	h := &handlers{deps: deps, cookieName: opts.CookieName, logger: logger}

	api := router.Group("/api")
	{
		api.GET("/products", h.products)
		api.GET("/product/:id", h.product)

		api.GET("/cart", h.getCart)
		api.POST("/cart", h.addToCart)
		api.PUT("/cart/:id", h.updateCartItem)
		api.DELETE("/cart/:id", h.removeCartItem)
		api.DELETE("/carts", h.clearCart)

		api.POST("/coupon", h.applyCoupon)
		api.DELETE("/coupon", h.removeCoupon)

		api.POST("/order", h.createOrder)
		api.GET("/order/:id", h.getOrder)
		api.POST("/pay/:id", h.payOrder)

		api.POST("/user/check", h.checkAuth)
	}

	router.POST("/admin/signin", h.signin)
	router.POST("/logout", h.logout)

	admin := router.Group("/admin", h.requireAuth())
	{
		admin.GET("/products", h.adminProducts)
		admin.POST("/product", h.adminCreateProduct)
		admin.PUT("/product/:id", h.adminUpdateProduct)
		admin.DELETE("/product/:id", h.adminDeleteProduct)

		admin.GET("/orders", h.adminOrders)
		admin.DELETE("/orders/all", h.adminDeleteAllOrders)

		admin.GET("/coupons", h.adminCoupons)
		admin.POST("/coupon", h.adminCreateCoupon)
		admin.PUT("/coupon/:id", h.adminUpdateCoupon)
		admin.DELETE("/coupon/:id", h.adminDeleteCoupon)
	}

	return router, nil
}

type handlers struct {
	deps       Deps
	cookieName string
	logger     *log.Logger
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// Package catalog covers product browsing for the storefront (with
// client-side pagination over the full upstream list) and the admin
// product/order back-office. Admin failures are flattened into Result
// values, matching the coupon back-office.
package catalog

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"storefront-gateway/internal/domain"
)

const perPage = 5

type api interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Scoped(path string) string
}

// Pagination describes one storefront page sliced out of the full list.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
	PerPage     int  `json:"itemsPerPage"`
}

type Service struct {
	api    api
	logger *log.Logger

	loading atomic.Bool

	mu       sync.Mutex
	products []domain.Product
	orders   []domain.Order
}

func New(api api, logger *log.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// IsLoading reports whether an admin call is in flight.
func (s *Service) IsLoading() bool {
	return s.loading.Load()
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type productResponse struct {
	Product domain.Product `json:"product"`
}

// Products fetches the full storefront list and returns the requested page
// of five. The page number is clamped into the valid range.
func (s *Service) Products(ctx context.Context, page int) ([]domain.Product, Pagination, error) {
	var resp productsResponse
	if err := s.api.Get(ctx, s.api.Scoped("/products"), &resp); err != nil {
		return nil, Pagination{}, domain.E(domain.KindFetch, domain.ErrMessage(err, "failed to load products"))
	}

	all := resp.Products
	totalPages := (len(all) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	pagination := Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		PerPage:     perPage,
	}
	return all[start:end], pagination, nil
}

// Product fetches a single storefront product.
func (s *Service) Product(ctx context.Context, id string) (*domain.Product, error) {
	var resp productResponse
	if err := s.api.Get(ctx, s.api.Scoped("/product/"+id), &resp); err != nil {
		if domain.ErrKind(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.E(domain.KindFetch, domain.ErrMessage(err, "failed to load product"))
	}
	return &resp.Product, nil
}

// AdminProducts returns the cached admin product list.
func (s *Service) AdminProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// LoadAdminProducts fetches and caches the admin product list.
func (s *Service) LoadAdminProducts(ctx context.Context) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	var resp productsResponse
	if err := s.api.Get(ctx, s.api.Scoped("/admin/products"), &resp); err != nil {
		return domain.FailErr(err, "failed to load products")
	}
	s.mu.Lock()
	s.products = resp.Products
	s.mu.Unlock()
	return domain.OK("")
}

// SaveProduct creates a product when isNew, otherwise updates it by id. The
// admin list is refreshed on success.
func (s *Service) SaveProduct(ctx context.Context, p domain.Product, isNew bool) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	var err error
	if isNew {
		err = s.api.Post(ctx, s.api.Scoped("/admin/product"), wrap(p), nil)
	} else {
		err = s.api.Put(ctx, s.api.Scoped("/admin/product/"+p.ID), wrap(p), nil)
	}
	if err != nil {
		return domain.FailErr(err, "failed to save product")
	}
	return s.LoadAdminProducts(ctx)
}

// DeleteProduct removes a product and refreshes the admin list on success.
func (s *Service) DeleteProduct(ctx context.Context, id string) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	if err := s.api.Delete(ctx, s.api.Scoped("/admin/product/"+id), nil); err != nil {
		return domain.FailErr(err, "failed to delete product")
	}
	return s.LoadAdminProducts(ctx)
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// Orders returns the cached admin order list.
func (s *Service) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// LoadOrders fetches and caches the admin order list.
func (s *Service) LoadOrders(ctx context.Context) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	var resp ordersResponse
	if err := s.api.Get(ctx, s.api.Scoped("/admin/orders"), &resp); err != nil {
		return domain.FailErr(err, "failed to load orders")
	}
	s.mu.Lock()
	s.orders = resp.Orders
	s.mu.Unlock()
	return domain.OK("")
}

// DeleteAllOrders purges every order and empties the cached list on success.
func (s *Service) DeleteAllOrders(ctx context.Context) domain.Result {
	s.loading.Store(true)
	defer s.loading.Store(false)

	if err := s.api.Delete(ctx, s.api.Scoped("/admin/orders/all"), nil); err != nil {
		return domain.FailErr(err, "failed to delete orders")
	}
	s.mu.Lock()
	s.orders = nil
	s.mu.Unlock()
	return domain.OK("")
}

func wrap(v any) any {
	return struct {
		Data any `json:"data"`
	}{Data: v}
}

// Package order implements the order aggregate: fetching a single order,
// normalizing its monetary fields, resolving which coupon governs the
// discount, and paying it.
package order

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"storefront-gateway/internal/domain"
	cartsvc "storefront-gateway/internal/service/cart"
	"storefront-gateway/internal/storage"
)

type api interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Scoped(path string) string
}

// CouponSource exposes the cart aggregate's in-memory coupon; used as the
// second step of discount resolution when the mirror holds nothing.
type CouponSource interface {
	CurrentCoupon() domain.Coupon
}

type Service struct {
	api     api
	store   storage.Store
	coupons CouponSource
	logger  *log.Logger

	mu      sync.Mutex
	current *domain.Order
}

func New(api api, store storage.Store, coupons CouponSource, logger *log.Logger) *Service {
	return &Service{api: api, store: store, coupons: coupons, logger: logger}
}

// Current returns the last loaded order, or nil.
func (s *Service) Current() *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Upstream order payload. Products arrive as a map keyed by line id, and the
// monetary fields are not reliably numeric, so both are normalized here
// before the domain order is built.
type wireOrder struct {
	ID         string              `json:"id"`
	Products   map[string]wireItem `json:"products"`
	Total      json.Number         `json:"total"`
	FinalTotal json.Number         `json:"final_total"`
	CouponCode string              `json:"coupon_code"`
	IsPaid     bool                `json:"is_paid"`
	PaidDate   int64               `json:"paid_date"`
	CreatedAt  int64               `json:"create_at"`
	User       domain.OrderUser    `json:"user"`
}

type wireItem struct {
	ID        string         `json:"id"`
	ProductID string         `json:"product_id"`
	Qty       json.Number    `json:"qty"`
	Product   domain.Product `json:"product"`
}

type orderResponse struct {
	Order wireOrder `json:"order"`
}

// Get fetches an order and normalizes it: per-line totals are expanded as
// price × qty, the discount is resolved in the fixed order (order-level
// coupon code, then the locally cached applied cart coupon, then none), the
// final total is clamped to zero and the discount to the total.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	var resp orderResponse
	if err := s.api.Get(ctx, s.api.Scoped("/order/"+id), &resp); err != nil {
		if kind := domain.ErrKind(err); kind == domain.KindNotFound || kind == domain.KindAuth {
			return nil, err
		}
		return nil, domain.E(domain.KindFetch, domain.ErrMessage(err, "failed to load order"))
	}
	if resp.Order.ID == "" {
		return nil, domain.E(domain.KindNotFound, "order not found")
	}

	order := s.normalize(ctx, resp.Order)

	s.mu.Lock()
	s.current = &order
	s.mu.Unlock()
	return &order, nil
}

func (s *Service) normalize(ctx context.Context, wire wireOrder) domain.Order {
	items := expandItems(wire.Products)

	var total int64
	for _, item := range items {
		total += item.Total
	}

	cartCoupon := s.resolveCartCoupon(ctx)

	finalTotal := total
	var discount int64
	couponCode := wire.CouponCode
	switch {
	case wire.CouponCode != "":
		finalTotal = toInt64(wire.FinalTotal)
		discount = total - finalTotal
	case cartCoupon.IsApplied && cartCoupon.PreviewDiscount > 0:
		discount = cartCoupon.PreviewDiscount
		finalTotal = total - discount
		couponCode = cartCoupon.Code
	}

	if finalTotal < 0 {
		finalTotal = 0
	}
	if discount < 0 {
		discount = 0
	}
	if discount > total {
		discount = total
	}

	order := domain.Order{
		ID:         wire.ID,
		Items:      items,
		Total:      total,
		FinalTotal: finalTotal,
		Discount:   discount,
		CouponCode: couponCode,
		IsPaid:     wire.IsPaid,
		PaidDate:   wire.PaidDate,
		CreatedAt:  wire.CreatedAt,
		User:       wire.User,
	}
	if discount > 0 && couponCode != "" {
		var percent int64
		if total > 0 {
			percent = discount * 100 / total
		}
		order.Coupon = &domain.OrderCoupon{
			Code:     couponCode,
			Percent:  percent,
			Discount: discount,
		}
	}
	return order
}

// resolveCartCoupon prefers the persisted coupon snapshot over the cart
// aggregate's in-memory one, mirroring cart load.
func (s *Service) resolveCartCoupon(ctx context.Context) domain.Coupon {
	var saved domain.Coupon
	if err := s.store.Get(ctx, cartsvc.StorageKeyCoupon, &saved); err == nil && saved.IsApplied {
		return saved
	}
	if s.coupons != nil {
		return s.coupons.CurrentCoupon()
	}
	return domain.Coupon{}
}

func expandItems(products map[string]wireItem) []domain.OrderItem {
	if len(products) == 0 {
		return nil
	}
	keys := make([]string, 0, len(products))
	for key := range products {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]domain.OrderItem, 0, len(keys))
	for _, key := range keys {
		wire := products[key]
		id := wire.ID
		if id == "" {
			id = key
		}
		qty := toInt64(wire.Qty)
		items = append(items, domain.OrderItem{
			ID:        id,
			ProductID: wire.ProductID,
			Qty:       qty,
			Product:   wire.Product,
			Total:     wire.Product.Price * qty,
		})
	}
	return items
}

type payResponse struct {
	Message string `json:"message"`
}

// Pay posts payment for an order. On success the held order, if it is the
// one paid, is marked paid locally; the next Get re-fetches from upstream
// regardless.
func (s *Service) Pay(ctx context.Context, id string) (*domain.Order, error) {
	var resp payResponse
	if err := s.api.Post(ctx, s.api.Scoped("/pay/"+id), nil, &resp); err != nil {
		if domain.ErrKind(err) == domain.KindAuth {
			return nil, err
		}
		return nil, domain.E(domain.KindPayment, domain.ErrMessage(err, "payment failed"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		s.current.IsPaid = true
		cp := *s.current
		return &cp, nil
	}
	return &domain.Order{ID: id, IsPaid: true}, nil
}

func toInt64(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

// Package cart implements the cart aggregate: line items, the running totals
// reported by the upstream API, and the applied coupon with its locally
// cached discount preview. Every mutation goes to the upstream API first and
// the local state is rebuilt from a fresh fetch; cart and coupon snapshots
// are mirrored to durable storage on every change.
package cart

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/storage"
)

// Durable mirror keys. The coupon is stored separately from the cart so it
// can be re-hydrated on load and cleared on its own.
const (
	StorageKeyCart   = "cart-data"
	StorageKeyCoupon = "cart-coupon"
)

const (
	maxQuantityPerItem = 99
	minPurchaseAmount  = 100
)

type api interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Scoped(path string) string
}

type Service struct {
	api    api
	store  storage.Store
	logger *log.Logger

	// seq tickets cart loads; a response is written back only while its
	// ticket is still the latest issued, so a slow fetch cannot overwrite
	// newer state.
	seq atomic.Uint64

	mu   sync.Mutex
	cart domain.Cart
}

func New(api api, store storage.Store, logger *log.Logger) *Service {
	return &Service{api: api, store: store, logger: logger}
}

// Cart returns a copy of the current in-memory cart.
func (s *Service) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// CurrentCoupon returns the in-memory coupon snapshot.
func (s *Service) CurrentCoupon() domain.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Coupon
}

type cartResponse struct {
	Data domain.Cart `json:"data"`
}

// Load fetches the upstream cart and merges in the persisted coupon: a
// persisted applied coupon wins over whatever coupon the upstream response
// carries, otherwise the existing in-memory coupon is kept. The merged
// snapshot is persisted. A load that lost the race to a newer load leaves
// state untouched and returns the current cart.
func (s *Service) Load(ctx context.Context) (domain.Cart, error) {
	ticket := s.seq.Add(1)

	var resp cartResponse
	if err := s.api.Get(ctx, s.api.Scoped("/cart"), &resp); err != nil {
		if domain.ErrKind(err) == domain.KindAuth {
			return domain.Cart{}, err
		}
		return domain.Cart{}, domain.E(domain.KindFetch, domain.ErrMessage(err, "failed to load cart"))
	}

	merged := resp.Data

	var saved domain.Coupon
	if err := s.store.Get(ctx, StorageKeyCoupon, &saved); err == nil && saved.IsApplied {
		merged.Coupon = saved
	} else {
		s.mu.Lock()
		merged.Coupon = s.cart.Coupon
		s.mu.Unlock()
	}

	if merged.Coupon.IsApplied {
		merged.Coupon.PreviewDiscount = merged.Total * merged.Coupon.Percent / 100
	}

	s.mu.Lock()
	if ticket != s.seq.Load() {
		// A newer load has been issued; discard this response.
		current := s.cart
		s.mu.Unlock()
		return current, nil
	}
	s.cart = merged
	s.mu.Unlock()

	s.persist(ctx, merged)
	return merged, nil
}

func (s *Service) persist(ctx context.Context, cart domain.Cart) {
	if err := s.store.Set(ctx, StorageKeyCart, cart); err != nil {
		s.logger.Printf("persist cart: %v", err)
	}
	if err := s.store.Set(ctx, StorageKeyCoupon, cart.Coupon); err != nil {
		s.logger.Printf("persist coupon: %v", err)
	}
}

type cartItemPayload struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
}

// Add puts qty units of a product into the cart. When the product is already
// present the prospective quantity is validated locally before any network
// call.
func (s *Service) Add(ctx context.Context, productID string, qty int64) error {
	s.mu.Lock()
	var existing *domain.CartItem
	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == productID {
			existing = &s.cart.Items[i]
			break
		}
	}
	if existing != nil {
		newQty := existing.Qty + qty
		if err := validateQuantity(newQty, existing.Product.Stock); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	payload := cartItemPayload{ProductID: productID, Qty: qty}
	if err := s.api.Post(ctx, s.api.Scoped("/cart"), wrap(payload), nil); err != nil {
		return err
	}
	_, err := s.Load(ctx)
	return err
}

// Update sets a cart line to the given quantity, then reloads.
func (s *Service) Update(ctx context.Context, itemID, productID string, qty int64) error {
	payload := cartItemPayload{ProductID: productID, Qty: qty}
	if err := s.api.Put(ctx, s.api.Scoped("/cart/"+itemID), wrap(payload), nil); err != nil {
		return err
	}
	_, err := s.Load(ctx)
	return err
}

// Remove deletes a cart line, then reloads.
func (s *Service) Remove(ctx context.Context, itemID string) error {
	if err := s.api.Delete(ctx, s.api.Scoped("/cart/"+itemID), nil); err != nil {
		return err
	}
	_, err := s.Load(ctx)
	return err
}

// RemoveQuantity takes removeQty units off a cart line. A resulting quantity
// of zero or less removes the line entirely.
func (s *Service) RemoveQuantity(ctx context.Context, itemID, productID string, removeQty int64) error {
	s.mu.Lock()
	var item *domain.CartItem
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == itemID {
			item = &s.cart.Items[i]
			break
		}
	}
	if item == nil {
		s.mu.Unlock()
		return domain.E(domain.KindNotFound, "cart item not found")
	}
	newQty := item.Qty - removeQty
	stock := item.Product.Stock
	s.mu.Unlock()

	if newQty <= 0 {
		return s.Remove(ctx, itemID)
	}
	if err := validateQuantity(newQty, stock); err != nil {
		return err
	}
	return s.Update(ctx, itemID, productID, newQty)
}

// Clear empties the cart. An already-empty cart is a success without a
// network call; otherwise the upstream cart is cleared and local cart and
// coupon state reset and removed from the mirror.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	empty := s.cart.Empty()
	s.mu.Unlock()
	if empty {
		return nil
	}

	if err := s.api.Delete(ctx, s.api.Scoped("/carts"), nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.cart = domain.Cart{}
	s.mu.Unlock()
	if err := s.store.Delete(ctx, StorageKeyCart, StorageKeyCoupon); err != nil {
		s.logger.Printf("clear cart mirror: %v", err)
	}
	return nil
}

type couponResponse struct {
	Message string `json:"message"`
	Data    struct {
		FinalTotal int64 `json:"final_total"`
	} `json:"data"`
}

// ApplyCoupon verifies a coupon code upstream and derives the local discount
// preview from the server-reported final total. Any failure clears partial
// coupon state before reporting, so a failed apply never leaves a stale
// discount behind.
func (s *Service) ApplyCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, domain.E(domain.KindValidation, "coupon code required")
	}

	var resp couponResponse
	err := s.api.Post(ctx, s.api.Scoped("/coupon"), wrap(map[string]string{"code": code}), &resp)
	if err != nil {
		s.clearCoupon(ctx)
		return domain.Coupon{}, domain.E(domain.KindCoupon, domain.ErrMessage(err, "coupon verification failed"))
	}

	s.mu.Lock()
	total := s.cart.Total
	discount := total - resp.Data.FinalTotal
	if discount < 0 {
		discount = 0
	}
	if discount > total {
		discount = total
	}
	var percent int64
	if total > 0 {
		percent = discount * 100 / total
	}
	coupon := domain.Coupon{
		Code:            code,
		Percent:         percent,
		IsApplied:       true,
		PreviewDiscount: discount,
	}
	s.cart.Coupon = coupon
	snapshot := s.cart
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return coupon, nil
}

// RemoveCoupon clears the applied coupon locally and from the mirror.
func (s *Service) RemoveCoupon(ctx context.Context) {
	s.clearCoupon(ctx)
}

func (s *Service) clearCoupon(ctx context.Context) {
	s.mu.Lock()
	s.cart.Coupon = domain.Coupon{}
	s.mu.Unlock()
	if err := s.store.Delete(ctx, StorageKeyCoupon); err != nil {
		s.logger.Printf("clear coupon mirror: %v", err)
	}
}

// OrderForm is the buyer-supplied part of an order.
type OrderForm struct {
	User    domain.OrderUser `json:"user"`
	Message string           `json:"message,omitempty"`
}

type orderPayload struct {
	OrderForm
	CouponCode string `json:"coupon_code,omitempty"`
}

type orderCreated struct {
	OrderID string `json:"orderId"`
}

// CreateOrder validates the cart against the purchase minimum and live
// stock, posts the order with the applied coupon code attached, and clears
// the cart on success. Stock violations are aggregated into a single error.
func (s *Service) CreateOrder(ctx context.Context, form OrderForm) (string, error) {
	s.mu.Lock()
	snapshot := s.cart
	s.mu.Unlock()

	if snapshot.Empty() {
		return "", domain.E(domain.KindValidation, "cart is empty")
	}
	if snapshot.FinalTotal <= minPurchaseAmount {
		return "", domain.E(domain.KindValidation,
			fmt.Sprintf("order total must exceed %d", minPurchaseAmount))
	}

	var violations []string
	for _, item := range snapshot.Items {
		if err := validateQuantity(item.Qty, item.Product.Stock); err != nil {
			title := item.Product.Title
			if title == "" {
				title = "unknown product"
			}
			violations = append(violations, title+": "+err.Error())
		}
	}
	if len(violations) > 0 {
		return "", domain.E(domain.KindStock, "stock check failed: "+strings.Join(violations, "; "))
	}

	payload := orderPayload{OrderForm: form}
	if snapshot.Coupon.IsApplied {
		payload.CouponCode = snapshot.Coupon.Code
	}

	var created orderCreated
	if err := s.api.Post(ctx, s.api.Scoped("/order"), wrap(payload), &created); err != nil {
		return "", domain.E(domain.KindOrder, domain.ErrMessage(err, "failed to create order"))
	}

	if err := s.Clear(ctx); err != nil {
		s.logger.Printf("clear cart after order %s: %v", created.OrderID, err)
	}
	return created.OrderID, nil
}

func validateQuantity(qty, stock int64) error {
	if qty <= 0 {
		return domain.E(domain.KindValidation, "quantity must be greater than zero")
	}
	maxAllowed := stock
	if maxAllowed > maxQuantityPerItem {
		maxAllowed = maxQuantityPerItem
	}
	if qty > maxAllowed {
		return domain.E(domain.KindValidation,
			fmt.Sprintf("quantity exceeds limit (max %d)", maxAllowed))
	}
	return nil
}

func wrap(v any) any {
	return struct {
		Data any `json:"data"`
	}{Data: v}
}

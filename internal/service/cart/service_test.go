package cart

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"testing"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/storage"
)

type stubAPI struct {
	responses map[string]any
	errs      map[string]error
	calls     []string
	onGet     func(path string)
}

func newStubAPI() *stubAPI {
	return &stubAPI{responses: map[string]any{}, errs: map[string]error{}}
}

func (s *stubAPI) Scoped(p string) string { return "/api/shop" + p }

func (s *stubAPI) record(method, path string, out any) error {
	key := method + " " + path
	s.calls = append(s.calls, key)
	if err := s.errs[key]; err != nil {
		return err
	}
	if v, ok := s.responses[key]; ok && out != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (s *stubAPI) Get(_ context.Context, path string, out any) error {
	if s.onGet != nil {
		s.onGet(path)
	}
	return s.record("GET", path, out)
}

func (s *stubAPI) Post(_ context.Context, path string, _, out any) error {
	return s.record("POST", path, out)
}

func (s *stubAPI) Put(_ context.Context, path string, _, out any) error {
	return s.record("PUT", path, out)
}

func (s *stubAPI) Delete(_ context.Context, path string, out any) error {
	return s.record("DELETE", path, out)
}

func (s *stubAPI) countCalls(key string) int {
	var n int
	for _, call := range s.calls {
		if call == key {
			n++
		}
	}
	return n
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newService(api *stubAPI, store storage.Store) *Service {
	if store == nil {
		store = storage.NewMemory()
	}
	return New(api, store, logDiscard())
}

func TestLoadMergesPersistedCoupon(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{
		Items: []domain.CartItem{{ID: "line-1", ProductID: "p1", Qty: 2}},
		Total: 1000,
	}}
	store := storage.NewMemory()
	saved := domain.Coupon{Code: "SAVE10", Percent: 10, IsApplied: true, PreviewDiscount: 50}
	if err := store.Set(context.Background(), StorageKeyCoupon, saved); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	svc := newService(api, store)
	cart, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Coupon.Code != "SAVE10" || !cart.Coupon.IsApplied {
		t.Fatalf("persisted coupon not merged: %+v", cart.Coupon)
	}
	if cart.Coupon.PreviewDiscount != 100 {
		t.Fatalf("expected recomputed discount 100, got %d", cart.Coupon.PreviewDiscount)
	}
	if !store.Has(StorageKeyCart) || !store.Has(StorageKeyCoupon) {
		t.Fatalf("cart snapshot not persisted")
	}
}

func TestLoadKeepsInMemoryCouponWhenNothingPersisted(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{Total: 500}}
	svc := newService(api, nil)
	svc.cart.Coupon = domain.Coupon{Code: "KEEP", Percent: 20, IsApplied: true}

	cart, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Coupon.Code != "KEEP" {
		t.Fatalf("in-memory coupon lost: %+v", cart.Coupon)
	}
	if cart.Coupon.PreviewDiscount != 100 {
		t.Fatalf("expected discount 100, got %d", cart.Coupon.PreviewDiscount)
	}
}

func TestLoadFetchError(t *testing.T) {
	api := newStubAPI()
	api.errs["GET /api/shop/cart"] = domain.E(domain.KindFetch, "boom")
	svc := newService(api, nil)

	_, err := svc.Load(context.Background())
	if !domain.IsKind(err, domain.KindFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestLoadDiscardsStaleResponse(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{Total: 111}}
	svc := newService(api, nil)

	// The first load's fetch triggers a second load before returning, so the
	// first response arrives with a stale ticket and must not win.
	recursed := false
	api.onGet = func(path string) {
		if recursed || path != "/api/shop/cart" {
			return
		}
		recursed = true
		api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{Total: 999}}
		if _, err := svc.Load(context.Background()); err != nil {
			t.Fatalf("inner load: %v", err)
		}
		api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{Total: 111}}
	}

	got, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("outer load: %v", err)
	}
	if got.Total != 999 {
		t.Fatalf("stale response overwrote newer state: total=%d", got.Total)
	}
	if svc.Cart().Total != 999 {
		t.Fatalf("state lost newer load: total=%d", svc.Cart().Total)
	}
}

func TestAddRejectsQuantityOverLimitWithoutNetworkCall(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)
	svc.cart = domain.Cart{Items: []domain.CartItem{{
		ID: "line-1", ProductID: "p1", Qty: 99,
		Product: domain.Product{Title: "Widget", Stock: 500},
	}}}

	err := svc.Add(context.Background(), "p1", 1)
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no network call, got %v", api.calls)
	}
}

func TestAddRejectsQuantityOverStock(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)
	svc.cart = domain.Cart{Items: []domain.CartItem{{
		ID: "line-1", ProductID: "p1", Qty: 2,
		Product: domain.Product{Title: "Widget", Stock: 3},
	}}}

	err := svc.Add(context.Background(), "p1", 2)
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "max 3") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestAddPostsAndReloads(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{Total: 100}}
	svc := newService(api, nil)

	if err := svc.Add(context.Background(), "p1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.countCalls("POST /api/shop/cart") != 1 || api.countCalls("GET /api/shop/cart") != 1 {
		t.Fatalf("unexpected calls: %v", api.calls)
	}
}

func TestRemoveQuantityDelegatesToRemove(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{}}
	svc := newService(api, nil)
	svc.cart = domain.Cart{Items: []domain.CartItem{{
		ID: "line-1", ProductID: "p1", Qty: 3,
		Product: domain.Product{Stock: 10},
	}}}

	if err := svc.RemoveQuantity(context.Background(), "line-1", "p1", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.countCalls("DELETE /api/shop/cart/line-1") != 1 {
		t.Fatalf("expected full removal, got %v", api.calls)
	}
	if api.countCalls("PUT /api/shop/cart/line-1") != 0 {
		t.Fatalf("unexpected update call: %v", api.calls)
	}
}

func TestRemoveQuantityUpdatesRemainder(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /api/shop/cart"] = cartResponse{Data: domain.Cart{}}
	svc := newService(api, nil)
	svc.cart = domain.Cart{Items: []domain.CartItem{{
		ID: "line-1", ProductID: "p1", Qty: 3,
		Product: domain.Product{Stock: 10},
	}}}

	if err := svc.RemoveQuantity(context.Background(), "line-1", "p1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.countCalls("PUT /api/shop/cart/line-1") != 1 {
		t.Fatalf("expected update, got %v", api.calls)
	}
}

func TestRemoveQuantityUnknownItem(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)

	err := svc.RemoveQuantity(context.Background(), "missing", "p1", 1)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClearIsIdempotentOnEmptyCart(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)

	for i := 0; i < 2; i++ {
		if err := svc.Clear(context.Background()); err != nil {
			t.Fatalf("clear %d: %v", i, err)
		}
	}
	if api.countCalls("DELETE /api/shop/carts") != 0 {
		t.Fatalf("expected no destructive calls, got %v", api.calls)
	}
}

func TestClearResetsStateAndMirror(t *testing.T) {
	api := newStubAPI()
	store := storage.NewMemory()
	svc := newService(api, store)
	svc.cart = domain.Cart{
		Items:  []domain.CartItem{{ID: "line-1", Qty: 1}},
		Total:  100,
		Coupon: domain.Coupon{Code: "SAVE10", IsApplied: true},
	}
	_ = store.Set(context.Background(), StorageKeyCart, svc.cart)
	_ = store.Set(context.Background(), StorageKeyCoupon, svc.cart.Coupon)

	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.countCalls("DELETE /api/shop/carts") != 1 {
		t.Fatalf("expected upstream clear, got %v", api.calls)
	}
	if !svc.Cart().Empty() || svc.Cart().Coupon.IsApplied {
		t.Fatalf("cart not reset: %+v", svc.Cart())
	}
	if store.Has(StorageKeyCart) || store.Has(StorageKeyCoupon) {
		t.Fatalf("mirror keys not removed")
	}
}

func TestApplyCouponDerivesDiscountFromFinalTotal(t *testing.T) {
	api := newStubAPI()
	resp := couponResponse{}
	resp.Data.FinalTotal = 900
	api.responses["POST /api/shop/coupon"] = resp
	store := storage.NewMemory()
	svc := newService(api, store)
	svc.cart = domain.Cart{Total: 1000}

	coupon, err := svc.ApplyCoupon(context.Background(), "SAVE10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coupon.PreviewDiscount != 100 {
		t.Fatalf("expected discount 100, got %d", coupon.PreviewDiscount)
	}
	if coupon.Percent != 10 {
		t.Fatalf("expected percent 10, got %d", coupon.Percent)
	}
	if !coupon.IsApplied {
		t.Fatalf("coupon not marked applied")
	}
	if !store.Has(StorageKeyCoupon) {
		t.Fatalf("coupon not persisted")
	}
}

func TestApplyCouponZeroTotal(t *testing.T) {
	api := newStubAPI()
	api.responses["POST /api/shop/coupon"] = couponResponse{}
	svc := newService(api, nil)

	coupon, err := svc.ApplyCoupon(context.Background(), "SAVE10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coupon.Percent != 0 || coupon.PreviewDiscount != 0 {
		t.Fatalf("expected zeroed coupon math, got %+v", coupon)
	}
}

func TestApplyCouponBlankCode(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)

	_, err := svc.ApplyCoupon(context.Background(), "   ")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no network call, got %v", api.calls)
	}
}

func TestApplyCouponFailureClearsLocalState(t *testing.T) {
	api := newStubAPI()
	api.errs["POST /api/shop/coupon"] = domain.E(domain.KindFetch, "coupon expired")
	store := storage.NewMemory()
	svc := newService(api, store)
	svc.cart = domain.Cart{
		Total:  1000,
		Coupon: domain.Coupon{Code: "OLD", Percent: 5, IsApplied: true, PreviewDiscount: 50},
	}
	_ = store.Set(context.Background(), StorageKeyCoupon, svc.cart.Coupon)

	_, err := svc.ApplyCoupon(context.Background(), "BAD")
	if !domain.IsKind(err, domain.KindCoupon) {
		t.Fatalf("expected coupon error, got %v", err)
	}
	if err.Error() != "coupon expired" {
		t.Fatalf("expected upstream message, got %q", err.Error())
	}
	if svc.Cart().Coupon.IsApplied {
		t.Fatalf("stale coupon left applied: %+v", svc.Cart().Coupon)
	}
	if store.Has(StorageKeyCoupon) {
		t.Fatalf("persisted coupon not cleared")
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)

	_, err := svc.CreateOrder(context.Background(), OrderForm{})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderBelowMinimum(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)
	svc.cart = domain.Cart{
		Items:      []domain.CartItem{{ID: "line-1", Qty: 1, Product: domain.Product{Stock: 10}}},
		Total:      100,
		FinalTotal: 100,
	}

	_, err := svc.CreateOrder(context.Background(), OrderForm{})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no network call, got %v", api.calls)
	}
}

func TestCreateOrderAggregatesStockViolations(t *testing.T) {
	api := newStubAPI()
	svc := newService(api, nil)
	svc.cart = domain.Cart{
		Items: []domain.CartItem{
			{ID: "l1", Qty: 5, Product: domain.Product{Title: "Widget", Stock: 2}},
			{ID: "l2", Qty: 3, Product: domain.Product{Title: "Gadget", Stock: 10}},
			{ID: "l3", Qty: 4, Product: domain.Product{Title: "Sprocket", Stock: 1}},
		},
		Total:      5000,
		FinalTotal: 5000,
	}

	_, err := svc.CreateOrder(context.Background(), OrderForm{})
	if !domain.IsKind(err, domain.KindStock) {
		t.Fatalf("expected stock error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Widget") || !strings.Contains(msg, "Sprocket") {
		t.Fatalf("expected both violations in one message, got %q", msg)
	}
	if strings.Contains(msg, "Gadget") {
		t.Fatalf("valid line reported as violation: %q", msg)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no network call, got %v", api.calls)
	}
}

func TestCreateOrderSuccessClearsCart(t *testing.T) {
	api := newStubAPI()
	api.responses["POST /api/shop/order"] = orderCreated{OrderID: "ord-1"}
	store := storage.NewMemory()
	svc := newService(api, store)
	svc.cart = domain.Cart{
		Items:      []domain.CartItem{{ID: "l1", Qty: 1, Product: domain.Product{Stock: 5}}},
		Total:      500,
		FinalTotal: 450,
		Coupon:     domain.Coupon{Code: "SAVE10", IsApplied: true, PreviewDiscount: 50},
	}

	orderID, err := svc.CreateOrder(context.Background(), OrderForm{
		User: domain.OrderUser{Name: "Ada", Email: "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderID != "ord-1" {
		t.Fatalf("unexpected order id %q", orderID)
	}
	if api.countCalls("DELETE /api/shop/carts") != 1 {
		t.Fatalf("cart not cleared upstream: %v", api.calls)
	}
	if !svc.Cart().Empty() {
		t.Fatalf("cart not cleared locally")
	}
}

func TestCreateOrderUpstreamFailure(t *testing.T) {
	api := newStubAPI()
	api.errs["POST /api/shop/order"] = domain.E(domain.KindFetch, "out of stock")
	svc := newService(api, nil)
	svc.cart = domain.Cart{
		Items:      []domain.CartItem{{ID: "l1", Qty: 1, Product: domain.Product{Stock: 5}}},
		Total:      500,
		FinalTotal: 450,
	}

	_, err := svc.CreateOrder(context.Background(), OrderForm{})
	if !domain.IsKind(err, domain.KindOrder) {
		t.Fatalf("expected order error, got %v", err)
	}
}

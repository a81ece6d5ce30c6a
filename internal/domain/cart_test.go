package domain

import "testing"

func TestCartItemCount(t *testing.T) {
	c := Cart{Items: []CartItem{{Qty: 2}, {Qty: 3}}}
	if got := c.ItemCount(); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if (Cart{}).ItemCount() != 0 {
		t.Fatalf("empty cart must count zero")
	}
}

func TestCartDisplayFinalTotal(t *testing.T) {
	c := Cart{Total: 1000, Coupon: Coupon{PreviewDiscount: 100}}
	if got := c.DisplayFinalTotal(); got != 900 {
		t.Fatalf("expected 900, got %d", got)
	}

	over := Cart{Total: 100, Coupon: Coupon{PreviewDiscount: 500}}
	if got := over.DisplayFinalTotal(); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestErrKind(t *testing.T) {
	err := E(KindCoupon, "coupon expired")
	if !IsKind(err, KindCoupon) {
		t.Fatalf("kind not recognized")
	}
	if IsKind(nil, KindCoupon) {
		t.Fatalf("nil must have no kind")
	}
	if ErrKind(err) != KindCoupon {
		t.Fatalf("unexpected kind %q", ErrKind(err))
	}
}

func TestErrMessageFallback(t *testing.T) {
	if got := ErrMessage(nil, "fallback"); got != "fallback" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrMessage(E(KindFetch, "boom"), "fallback"); got != "boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

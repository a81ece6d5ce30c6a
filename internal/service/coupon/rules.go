package coupon

import (
	"time"

	"storefront-gateway/internal/domain"
)

// dueDateLayouts are the accepted forms for an admin-entered due date.
var dueDateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidateDraft checks a coupon draft against the configured rules. It
// reports validity; it never errors.
func ValidateDraft(draft domain.AdminCoupon, rules domain.CouponRules) bool {
	if draft.Minimum < rules.MinAmount {
		return false
	}
	if draft.Price > rules.MaxDiscount {
		return false
	}
	return true
}

// ComputeExpiry resolves a coupon expiry as a Unix timestamp: the parsed
// due date when one is given, otherwise now plus the configured window.
func ComputeExpiry(dueDate string, expirationDays int, now time.Time) (int64, error) {
	if dueDate == "" {
		return now.AddDate(0, 0, expirationDays).Unix(), nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, dueDate); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, domain.E(domain.KindValidation, "invalid due date: "+dueDate)
}

// Status reports whether a coupon is expired and whether it is active
// (enabled and not yet due).
func Status(c domain.AdminCoupon, now time.Time) (isExpired, isActive bool) {
	ts := now.Unix()
	isExpired = c.DueDate < ts
	isActive = c.IsEnabled == 1 && c.DueDate > ts
	return isExpired, isActive
}

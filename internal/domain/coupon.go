package domain

// CouponRules are the admin-configured constraints a coupon draft must
// satisfy before it is sent upstream.
type CouponRules struct {
	MinAmount         int64    `json:"minAmount"`
	MaxDiscount       int64    `json:"maxDiscount"`
	MaxUsagePerUser   int      `json:"maxUsagePerUser"`
	ExpirationDays    int      `json:"expirationDays"`
	AllowedCategories []string `json:"allowedCategories,omitempty"`
	ExcludedProducts  []string `json:"excludedProducts,omitempty"`
}

// DefaultCouponRules returns the baseline rule set.
func DefaultCouponRules() CouponRules {
	return CouponRules{
		MinAmount:       100,
		MaxDiscount:     1000,
		MaxUsagePerUser: 1,
		ExpirationDays:  30,
	}
}

// AdminCoupon is the back-office coupon payload. Minimum is the minimum
// order amount the coupon requires, Price the discount amount it grants.
type AdminCoupon struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Code      string `json:"code"`
	Percent   int64  `json:"percent"`
	Minimum   int64  `json:"minimum"`
	Price     int64  `json:"price"`
	DueDate   int64  `json:"due_date"`
	IsEnabled int    `json:"is_enabled"`
}

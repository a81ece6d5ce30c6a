package domain

type Order struct {
	ID         string       `json:"id"`
	Items      []OrderItem  `json:"products"`
	Total      int64        `json:"total"`
	FinalTotal int64        `json:"final_total"`
	Discount   int64        `json:"discount"`
	CouponCode string       `json:"coupon_code,omitempty"`
	Coupon     *OrderCoupon `json:"coupon,omitempty"`
	IsPaid     bool         `json:"is_paid"`
	PaidDate   int64        `json:"paid_date,omitempty"`
	CreatedAt  int64        `json:"create_at,omitempty"`
	User       OrderUser    `json:"user"`
}

type OrderItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Qty       int64   `json:"qty"`
	Product   Product `json:"product"`
	Total     int64   `json:"total"`
}

// OrderCoupon describes the coupon governing an order's discount, resolved
// from the order itself or from the locally cached cart coupon.
type OrderCoupon struct {
	Code     string `json:"code"`
	Percent  int64  `json:"percent"`
	DueDate  int64  `json:"due_date,omitempty"`
	Discount int64  `json:"discount"`
}

type OrderUser struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Tel     string `json:"tel"`
	Address string `json:"address"`
}

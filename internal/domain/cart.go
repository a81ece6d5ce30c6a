package domain

// Coupon is the cart-held coupon snapshot. It is copied by value into the
// durable mirror, never shared by reference.
type Coupon struct {
	Code            string `json:"code"`
	Percent         int64  `json:"percent"`
	IsApplied       bool   `json:"isApplied"`
	PreviewDiscount int64  `json:"previewDiscount"`
}

type Cart struct {
	Items      []CartItem `json:"carts"`
	Total      int64      `json:"total"`
	FinalTotal int64      `json:"final_total"`
	Coupon     Coupon     `json:"coupon"`
}

type CartItem struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	Qty        int64   `json:"qty"`
	Product    Product `json:"product"`
	Total      int64   `json:"total"`
	FinalTotal int64   `json:"final_total"`
}

// Empty reports whether the cart holds no line items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// ItemCount is the sum of line quantities.
func (c Cart) ItemCount() int64 {
	var n int64
	for _, item := range c.Items {
		n += item.Qty
	}
	return n
}

// DisplayTotal is the pre-discount total as reported by the server.
func (c Cart) DisplayTotal() int64 {
	return c.Total
}

// DisplayDiscount is the locally cached coupon discount preview.
func (c Cart) DisplayDiscount() int64 {
	return c.Coupon.PreviewDiscount
}

// DisplayFinalTotal is the total minus the coupon preview discount, clamped
// to zero.
func (c Cart) DisplayFinalTotal() int64 {
	final := c.Total - c.Coupon.PreviewDiscount
	if final < 0 {
		return 0
	}
	return final
}

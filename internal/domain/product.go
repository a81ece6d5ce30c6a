package domain

type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	OriginPrice int64  `json:"origin_price,omitempty"`
	// Stock travels in the upstream "unit" field.
	Stock     int64    `json:"unit"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	ImageURLs []string `json:"imagesUrl,omitempty"`
	IsEnabled int      `json:"is_enabled,omitempty"`
}

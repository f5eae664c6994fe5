package domain

import "time"

// Product is the catalog view the checkout engine depends on. Prices are in
// paise; DiscountPrice is the authoritative selling price.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	DiscountPrice int64     `json:"discount_price"`
	ImageURL      string    `json:"image_url,omitempty"`
	InStock       bool      `json:"in_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SellingPrice returns the price a buyer pays: the discount price when set,
// otherwise the list price.
func (p *Product) SellingPrice() int64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.Price
}

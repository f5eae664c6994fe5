package domain

import "time"

// Cart represents a shopping cart, one per principal.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents a single line in the cart. Price is the catalog price
// in paise captured at add time, for display only; checkout re-prices every
// line from the catalog.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// TotalAmount calculates the total price of all items in the cart (in paise).
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of items in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart item matching the given product ID.
// Returns -1 if not found.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges the given item into the cart. An already-present product
// increments its quantity rather than duplicating the line.
func (c *Cart) AddItem(item CartItem) {
	if idx := c.FindItemIndex(item.ProductID); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// RemoveItem drops the line for the given product ID, if present.
func (c *Cart) RemoveItem(productID string) {
	if idx := c.FindItemIndex(productID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
}

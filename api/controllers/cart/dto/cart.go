package cartdto

// Cart is the rendered cart: lines in insertion order and the running total.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	LineCount int        `json:"line_count"`
	ItemCount int        `json:"item_count"`
	UnitPrice string     `json:"unit_price"`
	Total     string     `json:"total"`
	Currency  string     `json:"currency"`
}

// CartLine carries its index so the UI can address +/- buttons at it.
type CartLine struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Image    *string `json:"image"`
	Quantity int     `json:"quantity"`
	Subtotal string  `json:"subtotal"`
}

// AdjustQuantityRequest moves one line's quantity by delta. Zero is allowed
// but the field must be present.
type AdjustQuantityRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

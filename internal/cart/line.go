package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/scancart-backend/internal/catalog"
)

// Line is one distinct product and its accumulated quantity. Quantity is at
// least 1 while the line is in the cart.
type Line struct {
	Name     string  `json:"name"`
	Image    *string `json:"image"`
	Quantity int     `json:"quantity"`
}

func lineFromProduct(p catalog.Product) Line {
	line := Line{Name: p.Name, Quantity: 1}
	if p.Image != nil {
		img := *p.Image
		line.Image = &img
	}
	return line
}

// Snapshot is the cart as observed after a read or mutation.
type Snapshot struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l
		if l.Image != nil {
			img := *l.Image
			out[i].Image = &img
		}
	}
	return out
}

func totalOf(lines []Line, unitPrice decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

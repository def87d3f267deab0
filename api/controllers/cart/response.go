package cart

import (
	"github.com/shopspring/decimal"

	cartdto "github.com/angelmondragon/scancart-backend/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/scancart-backend/internal/cart"
)

func NewCartView(snap cartsvc.Snapshot) cartdto.Cart {
	lines := make([]cartdto.CartLine, 0, len(snap.Lines))
	items := 0
	for i, line := range snap.Lines {
		items += line.Quantity
		lines = append(lines, cartdto.CartLine{
			Index:    i,
			Name:     line.Name,
			Image:    line.Image,
			Quantity: line.Quantity,
			Subtotal: snap.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).StringFixed(2),
		})
	}

	return cartdto.Cart{
		Lines:     lines,
		LineCount: len(lines),
		ItemCount: items,
		UnitPrice: snap.UnitPrice.StringFixed(2),
		Total:     snap.Total.StringFixed(2),
		Currency:  snap.Currency,
	}
}

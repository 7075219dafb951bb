package pricing

import (
	"github.com/storefront-next/internal/cart"

	"github.com/shopspring/decimal"
)

// Summary 订单汇总视图
type Summary struct {
	LineCount       int             `json:"line_count"`
	ItemCount       int             `json:"item_count"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ProductDiscount decimal.Decimal `json:"product_discount"`
	Amount          decimal.Decimal `json:"amount"`
	CartDiscount    decimal.Decimal `json:"cart_discount"`
	Total           decimal.Decimal `json:"total"`
	Progress        decimal.Decimal `json:"progress"`
	Tier            string          `json:"tier"`
	Message         string          `json:"message"`
}

// Summarize 计算购物车汇总
func (r Rules) Summarize(snapshot cart.Snapshot) Summary {
	subtotal := Subtotal(snapshot)
	productDiscount := ProductLevelDiscount(snapshot)
	amount := subtotal.Sub(productDiscount)
	cartDiscount := r.CartLevelDiscount(amount)
	return Summary{
		LineCount:       snapshot.Len(),
		ItemCount:       snapshot.ItemCount(),
		Subtotal:        subtotal,
		ProductDiscount: productDiscount,
		Amount:          amount,
		CartDiscount:    cartDiscount,
		Total:           amount.Sub(cartDiscount),
		Progress:        r.ProgressPercentage(amount).Round(2),
		Tier:            r.CurrentTier(amount),
		Message:         r.DiscountMessage(amount),
	}
}

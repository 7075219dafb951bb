package pricing

import (
	"fmt"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	fifty   = decimal.NewFromInt(50)
)

// Rules 阶梯折扣规则
// 一档折扣金额要求严格超过阈值；二档折扣、档位、进度与提示均在到达阈值时生效
type Rules struct {
	Tier1Threshold decimal.Decimal
	Tier2Threshold decimal.Decimal
	Tier1Rate      decimal.Decimal
	Tier2Rate      decimal.Decimal
	CurrencySymbol string
}

// DefaultRules 默认规则：满 5000 享 10%，满 20000 享 20%
func DefaultRules() Rules {
	return Rules{
		Tier1Threshold: decimal.NewFromInt(5000),
		Tier2Threshold: decimal.NewFromInt(20000),
		Tier1Rate:      decimal.RequireFromString("0.10"),
		Tier2Rate:      decimal.RequireFromString("0.20"),
		CurrencySymbol: "₹",
	}
}

// NewRules 由配置值构造规则，非法配置回退默认值
func NewRules(tier1Threshold, tier2Threshold int64, tier1Rate, tier2Rate float64, symbol string) Rules {
	rules := DefaultRules()
	if tier1Threshold > 0 && tier2Threshold > tier1Threshold {
		rules.Tier1Threshold = decimal.NewFromInt(tier1Threshold)
		rules.Tier2Threshold = decimal.NewFromInt(tier2Threshold)
	}
	if tier1Rate > 0 && tier1Rate < 1 {
		rules.Tier1Rate = decimal.NewFromFloat(tier1Rate)
	}
	if tier2Rate > 0 && tier2Rate < 1 {
		rules.Tier2Rate = decimal.NewFromFloat(tier2Rate)
	}
	if symbol != "" {
		rules.CurrencySymbol = symbol
	}
	return rules
}

// Subtotal 各行小计之和
func Subtotal(snapshot cart.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, line := range snapshot.Lines() {
		total = total.Add(line.Subtotal)
	}
	return total
}

// ProductLevelDiscount 商品级折扣：单价 × 折扣率 × 数量，只对最终合计取整
func ProductLevelDiscount(snapshot cart.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, line := range snapshot.Lines() {
		if line.DiscountPercent.IsZero() {
			continue
		}
		perUnit := line.UnitPrice.Mul(line.DiscountPercent).Div(hundred)
		total = total.Add(perUnit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(0)
}

// DiscountableAmount 阶梯折扣的计算基数
func DiscountableAmount(snapshot cart.Snapshot) decimal.Decimal {
	return Subtotal(snapshot).Sub(ProductLevelDiscount(snapshot))
}

// CartLevelDiscount 购物车阶梯折扣
func (r Rules) CartLevelDiscount(amount decimal.Decimal) decimal.Decimal {
	switch {
	case amount.GreaterThanOrEqual(r.Tier2Threshold):
		return amount.Mul(r.Tier2Rate).Round(0)
	case amount.GreaterThan(r.Tier1Threshold):
		return amount.Mul(r.Tier1Rate).Round(0)
	default:
		return decimal.Zero
	}
}

// Total 应付总额
func (r Rules) Total(snapshot cart.Snapshot) decimal.Decimal {
	amount := DiscountableAmount(snapshot)
	return amount.Sub(r.CartLevelDiscount(amount))
}

// ProgressPercentage 距下一档位的进度，范围 [0,100]
func (r Rules) ProgressPercentage(amount decimal.Decimal) decimal.Decimal {
	var progress decimal.Decimal
	switch {
	case amount.GreaterThanOrEqual(r.Tier2Threshold):
		progress = hundred
	case amount.GreaterThanOrEqual(r.Tier1Threshold):
		span := r.Tier2Threshold.Sub(r.Tier1Threshold)
		progress = fifty.Add(amount.Sub(r.Tier1Threshold).Div(span).Mul(fifty))
	default:
		progress = amount.Div(r.Tier1Threshold).Mul(fifty)
	}
	if progress.IsNegative() {
		return decimal.Zero
	}
	if progress.GreaterThan(hundred) {
		return hundred
	}
	return progress
}

// CurrentTier 当前档位
func (r Rules) CurrentTier(amount decimal.Decimal) string {
	switch {
	case amount.GreaterThanOrEqual(r.Tier2Threshold):
		return constants.TierTwo
	case amount.GreaterThanOrEqual(r.Tier1Threshold):
		return constants.TierOne
	default:
		return constants.TierNone
	}
}

// DiscountMessage 档位提示文案
func (r Rules) DiscountMessage(amount decimal.Decimal) string {
	one := decimal.NewFromInt(1)
	switch r.CurrentTier(amount) {
	case constants.TierTwo:
		return fmt.Sprintf("🎉 You unlocked %s%% extra discount!", percent(r.Tier2Rate))
	case constants.TierOne:
		remaining := r.Tier2Threshold.Add(one).Sub(amount)
		return fmt.Sprintf("Add %s%s more to unlock %s%% discount!", r.CurrencySymbol, remaining.StringFixed(0), percent(r.Tier2Rate))
	default:
		remaining := r.Tier1Threshold.Add(one).Sub(amount)
		return fmt.Sprintf("Add %s%s more to unlock %s%% discount!", r.CurrencySymbol, remaining.StringFixed(0), percent(r.Tier1Rate))
	}
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).Round(2).String()
}

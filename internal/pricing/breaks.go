package pricing

import (
	"github.com/shopspring/decimal"

	"storefront-widgets/internal/model"
)

// ResolveBreaks converts bulk pricing rules into flat tier prices against
// calculated. Upstream order is preserved; rules with an unknown mode are
// dropped.
func ResolveBreaks(rules []model.QuantityBreakRule, calculated decimal.Decimal) []model.QuantityBreak {
	out := make([]model.QuantityBreak, 0, len(rules))
	for _, rule := range rules {
		price, ok := tierPrice(rule, calculated)
		if !ok {
			continue
		}

		b := model.QuantityBreak{Min: rule.MinQuantity, Price: price}
		if b.Min < 1 {
			b.Min = 1
		}
		if rule.MaxQuantity > 0 {
			maxQty := rule.MaxQuantity
			b.Max = &maxQty
		}
		out = append(out, b)
	}
	return out
}

func tierPrice(rule model.QuantityBreakRule, calculated decimal.Decimal) (decimal.Decimal, bool) {
	switch rule.Mode {
	case model.DiscountAbsolute:
		return rule.Amount, true
	case model.DiscountPercent:
		return model.PercentOff(calculated, rule.Amount), true
	case model.DiscountFixedOff:
		return model.AmountOff(calculated, rule.Amount), true
	default:
		return decimal.Zero, false
	}
}

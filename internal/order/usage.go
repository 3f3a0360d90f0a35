package order

import (
	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/models"
)

// AggregateUsage sums per-ingredient consumption across a line sequence:
// for every line, each recipe entry contributes its per-unit quantity times
// the line quantity. Lines with an empty recipe contribute nothing. The
// result is independent of line order, and quantities keep full decimal
// precision — fractional amounts like 0.5 liters are never rounded.
func AggregateUsage(lines []models.OrderLine) map[string]decimal.Decimal {
	usage := make(map[string]decimal.Decimal)
	for _, ln := range lines {
		qty := decimal.NewFromInt(int64(ln.Quantity))
		for _, ing := range ln.Ingredients {
			usage[ing.IngredientName] = usage[ing.IngredientName].Add(ing.Quantity.Mul(qty))
		}
	}
	return usage
}

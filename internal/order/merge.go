// Package order holds the pure order-ledger engines: merging selections
// into a line sequence, applying quantity deltas, and aggregating
// per-ingredient consumption. Nothing here performs I/O or mutates its
// inputs; persistence belongs to the session layer.
package order

import (
	"github.com/tably/pos-backend/internal/models"
)

// Selection pairs a catalog product with the quantity the operator picked.
type Selection struct {
	Product  models.Product
	Quantity int
}

// Merge combines newly selected products into an existing line sequence.
//
// Lines are matched by product name. A selection that matches an existing
// line increases that line's quantity; the line's price and recipe snapshot
// are left untouched, not refreshed from the catalog. Selections without a
// match are appended at the end, in selection order, snapshotting the
// product's current price and recipe. Selections with quantity <= 0 are
// ignored. Re-merging the same selections adds again; this is "add more",
// not a re-sync.
func Merge(existing []models.OrderLine, selections []Selection) []models.OrderLine {
	merged := models.CloneLines(existing)

	index := make(map[string]int, len(merged))
	for i, ln := range merged {
		index[ln.Name] = i
	}

	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		if i, ok := index[sel.Product.Name]; ok {
			merged[i].Quantity += sel.Quantity
			continue
		}
		merged = append(merged, models.OrderLine{
			Name:        sel.Product.Name,
			Price:       sel.Product.Price,
			Quantity:    sel.Quantity,
			Ingredients: append([]models.Ingredient(nil), sel.Product.Ingredients...),
		})
		index[sel.Product.Name] = len(merged) - 1
	}

	return merged
}

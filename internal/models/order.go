package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and ingredient quantities are plain JSON numbers in the
	// persisted table document.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus values match the persisted document wire format.
type OrderStatus string

const (
	StatusEmpty   OrderStatus = "Empty"
	StatusPending OrderStatus = "Pending Order"
	StatusRunning OrderStatus = "Running Order"
)

// OrderLine is one ordered product on a table. Price and ingredients are
// snapshots taken from the catalog when the line was added; they are never
// refreshed afterwards. Quantity is always >= 1 for a stored line — a line
// driven to zero is removed, never kept.
type OrderLine struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Ingredients []Ingredient    `json:"ingredients"`
}

// TableOrder is the persisted order document for a single table.
type TableOrder struct {
	TableNumber     string                     `json:"tableNumber"`
	Orders          []OrderLine                `json:"orders"`
	OrderStatus     OrderStatus                `json:"orderStatus"`
	IngredientUsage map[string]decimal.Decimal `json:"ingredientUsage"`
}

// NewTableOrder returns an empty order document for a table.
func NewTableOrder(tableNumber string) TableOrder {
	return TableOrder{
		TableNumber:     tableNumber,
		Orders:          []OrderLine{},
		OrderStatus:     StatusEmpty,
		IngredientUsage: map[string]decimal.Decimal{},
	}
}

// EffectiveStatus derives the presented status. The stored value only ever
// holds Empty or Running Order: a table that has lines but was never
// submitted is reported as Pending Order without writing that value back.
func (t TableOrder) EffectiveStatus() OrderStatus {
	if t.OrderStatus == StatusRunning {
		return StatusRunning
	}
	if len(t.Orders) > 0 {
		return StatusPending
	}
	return StatusEmpty
}

// Clone returns a deep copy so callers can mutate lines without aliasing
// the original document.
func (t TableOrder) Clone() TableOrder {
	out := t
	out.Orders = CloneLines(t.Orders)
	out.IngredientUsage = make(map[string]decimal.Decimal, len(t.IngredientUsage))
	for k, v := range t.IngredientUsage {
		out.IngredientUsage[k] = v
	}
	return out
}

// CloneLines deep-copies a line sequence, including each recipe snapshot.
func CloneLines(lines []OrderLine) []OrderLine {
	out := make([]OrderLine, len(lines))
	for i, ln := range lines {
		out[i] = ln
		out[i].Ingredients = append([]Ingredient(nil), ln.Ingredients...)
	}
	return out
}

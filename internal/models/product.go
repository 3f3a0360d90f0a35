package models

import "github.com/shopspring/decimal"

// Ingredient is one entry of a product's recipe: how much of a raw
// ingredient a single unit of the product consumes.
type Ingredient struct {
	IngredientName string          `json:"ingredientName"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// Product represents a menu product available for ordering.
// The recipe is read-only to the order core; it is snapshotted onto
// order lines at add-time.
type Product struct {
	ID          string          `json:"id"`
	BranchCode  string          `json:"branchCode"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Subcategory string          `json:"subcategory"`
	Ingredients []Ingredient    `json:"ingredients"`
}

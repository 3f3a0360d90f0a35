package models

import "github.com/shopspring/decimal"

// StockItem is a raw ingredient tracked by the inventory collaborator.
// The order core only reads ingredient names from here; it never debits
// stock itself.
type StockItem struct {
	ID             string          `json:"id"`
	BranchCode     string          `json:"branchCode"`
	IngredientName string          `json:"ingredientName"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

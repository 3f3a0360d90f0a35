package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/models"
	"github.com/tably/pos-backend/internal/repository"
)

var ErrInvalidStockItem = errors.New("invalid stock item")

var validUnits = map[string]bool{
	"grams":     true,
	"kilograms": true,
	"liters":    true,
}

// StockService handles the raw-ingredient inventory. It is a plain CRUD
// collaborator: submitted orders report usage toward it, but stock is never
// debited here.
type StockService struct {
	repo repository.StockRepository
}

// NewStockService creates a new stock service.
func NewStockService(repo repository.StockRepository) *StockService {
	return &StockService{
		repo: repo,
	}
}

// AddItemRequest carries a new inventory ingredient.
type AddItemRequest struct {
	IngredientName string          `json:"ingredientName"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

// ListItems returns the branch's stock items.
func (s *StockService) ListItems(ctx context.Context, branch string) ([]models.StockItem, error) {
	return s.repo.GetAll(ctx, branch)
}

// AddItem validates and stores a new stock item.
func (s *StockService) AddItem(ctx context.Context, branch string, req AddItemRequest) (*models.StockItem, error) {
	if req.IngredientName == "" {
		return nil, fmt.Errorf("%w: ingredient name is required", ErrInvalidStockItem)
	}
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidStockItem)
	}
	if !validUnits[req.Unit] {
		return nil, fmt.Errorf("%w: unit must be grams, kilograms or liters", ErrInvalidStockItem)
	}

	item := models.StockItem{
		ID:             uuid.New().String(),
		BranchCode:     branch,
		IngredientName: req.IngredientName,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create stock item: %w", err)
	}
	return &item, nil
}

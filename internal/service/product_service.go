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

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNoItems         = errors.New("no items selected")
)

// ProductService handles business logic for the menu catalog.
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// CreateProductRequest carries a new catalog product. Recipe entries with an
// empty ingredient name or a non-positive quantity are rejected rather than
// silently dropped.
type CreateProductRequest struct {
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	Subcategory string              `json:"subcategory"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

// ListProducts returns all products for the branch.
func (s *ProductService) ListProducts(ctx context.Context, branch string) ([]models.Product, error) {
	return s.repo.GetAll(ctx, branch)
}

// ListGrouped returns the branch's products keyed by subcategory. The
// grouping is presentation-only; it has no effect on the data model.
func (s *ProductService) ListGrouped(ctx context.Context, branch string) (map[string][]models.Product, error) {
	products, err := s.repo.GetAll(ctx, branch)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.Product)
	for _, p := range products {
		grouped[p.Subcategory] = append(grouped[p.Subcategory], p)
	}
	return grouped, nil
}

// GetProduct returns a product by ID within the branch.
func (s *ProductService) GetProduct(ctx context.Context, branch, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, branch, id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, branch string, req CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if req.Subcategory == "" {
		return nil, fmt.Errorf("%w: subcategory is required", ErrInvalidProduct)
	}
	for _, ing := range req.Ingredients {
		if ing.IngredientName == "" {
			return nil, fmt.Errorf("%w: recipe entry has an empty ingredient name", ErrInvalidProduct)
		}
		if !ing.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: recipe entry %q must have a positive quantity", ErrInvalidProduct, ing.IngredientName)
		}
	}

	product := models.Product{
		ID:          uuid.New().String(),
		BranchCode:  branch,
		Name:        req.Name,
		Price:       req.Price,
		Subcategory: req.Subcategory,
		Ingredients: append([]models.Ingredient(nil), req.Ingredients...),
	}
	if product.Ingredients == nil {
		product.Ingredients = []models.Ingredient{}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/tably/pos-backend/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTableNotFound   = errors.New("table not found")
	ErrTableExists     = errors.New("table already exists")
)

// ProductRepository defines the interface for catalog data access.
// All queries are scoped to a branch.
type ProductRepository interface {
	GetAll(ctx context.Context, branch string) ([]models.Product, error)
	GetByID(ctx context.Context, branch, id string) (*models.Product, error)
	Create(ctx context.Context, product models.Product) error
}

// InMemoryProductRepository implements ProductRepository with in-memory
// storage. It backs tests and database-less development mode.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
	order    []string
}

// NewInMemoryProductRepository creates an empty in-memory catalog.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns the branch's products in insertion order.
func (r *InMemoryProductRepository) GetAll(ctx context.Context, branch string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		if p := r.products[id]; p.BranchCode == branch {
			products = append(products, p)
		}
	}
	return products, nil
}

// GetByID returns a product by its ID within the branch.
func (r *InMemoryProductRepository) GetByID(ctx context.Context, branch, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists || product.BranchCode != branch {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create stores a new product.
func (r *InMemoryProductRepository) Create(ctx context.Context, product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = product
	return nil
}

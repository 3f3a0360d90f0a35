package repository

import (
	"context"
	"sync"

	"github.com/tably/pos-backend/internal/models"
)

// StockRepository defines the interface for the raw-ingredient inventory.
// The order core never debits stock; it only lists ingredients so products
// can reference them by name.
type StockRepository interface {
	GetAll(ctx context.Context, branch string) ([]models.StockItem, error)
	Create(ctx context.Context, item models.StockItem) error
}

// InMemoryStockRepository implements StockRepository with in-memory storage.
type InMemoryStockRepository struct {
	mu    sync.RWMutex
	items []models.StockItem
}

// NewInMemoryStockRepository creates an empty in-memory inventory.
func NewInMemoryStockRepository() *InMemoryStockRepository {
	return &InMemoryStockRepository{}
}

// GetAll returns the branch's stock items in insertion order.
func (r *InMemoryStockRepository) GetAll(ctx context.Context, branch string) ([]models.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.StockItem, 0, len(r.items))
	for _, item := range r.items {
		if item.BranchCode == branch {
			items = append(items, item)
		}
	}
	return items, nil
}

// Create stores a new stock item.
func (r *InMemoryStockRepository) Create(ctx context.Context, item models.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, item)
	return nil
}

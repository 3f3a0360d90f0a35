package repository

import (
	"context"
	"sync"

	"github.com/tably/pos-backend/internal/models"
)

// TableRepository defines the document-store interface for table order
// documents. Save is an upsert: the session layer's merge/edit/submit
// paths all write the whole document, last write wins.
type TableRepository interface {
	List(ctx context.Context, branch string) ([]models.TableOrder, error)
	GetTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error)
	SaveTable(ctx context.Context, branch string, table models.TableOrder) error
	CreateTable(ctx context.Context, branch, tableNumber string) error
}

// InMemoryTableRepository implements TableRepository with in-memory storage.
type InMemoryTableRepository struct {
	mu     sync.RWMutex
	tables map[string]models.TableOrder
	order  []string
}

// NewInMemoryTableRepository creates an empty in-memory table store.
func NewInMemoryTableRepository() *InMemoryTableRepository {
	return &InMemoryTableRepository{
		tables: make(map[string]models.TableOrder),
	}
}

func tableKey(branch, tableNumber string) string {
	return branch + "/" + tableNumber
}

// List returns the branch's tables in creation order.
func (r *InMemoryTableRepository) List(ctx context.Context, branch string) ([]models.TableOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := branch + "/"
	tables := make([]models.TableOrder, 0, len(r.order))
	for _, key := range r.order {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			tables = append(tables, r.tables[key].Clone())
		}
	}
	return tables, nil
}

// GetTable returns the table's order document.
func (r *InMemoryTableRepository) GetTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, exists := r.tables[tableKey(branch, tableNumber)]
	if !exists {
		return models.TableOrder{}, ErrTableNotFound
	}
	return table.Clone(), nil
}

// SaveTable upserts the table's order document.
func (r *InMemoryTableRepository) SaveTable(ctx context.Context, branch string, table models.TableOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tableKey(branch, table.TableNumber)
	if _, exists := r.tables[key]; !exists {
		r.order = append(r.order, key)
	}
	r.tables[key] = table.Clone()
	return nil
}

// CreateTable registers a new empty table.
func (r *InMemoryTableRepository) CreateTable(ctx context.Context, branch, tableNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tableKey(branch, tableNumber)
	if _, exists := r.tables[key]; exists {
		return ErrTableExists
	}
	r.order = append(r.order, key)
	r.tables[key] = models.NewTableOrder(tableNumber)
	return nil
}

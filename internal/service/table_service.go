package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tably/pos-backend/internal/models"
	"github.com/tably/pos-backend/internal/order"
	"github.com/tably/pos-backend/internal/repository"
	"github.com/tably/pos-backend/internal/session"
)

var ErrInvalidTable = errors.New("invalid table")

// OrderItemRequest references a catalog product by ID with a chosen quantity.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// EditChange is one quantity delta against a line index. Deltas are
// typically ±1 from UI controls but any non-zero magnitude is accepted.
type EditChange struct {
	Index int `json:"index"`
	Delta int `json:"delta"`
}

// TableService exposes the externally visible table-order operations. Each
// call opens a session over the table's persisted document, runs the
// engines, and persists the result.
type TableService struct {
	tables   repository.TableRepository
	products repository.ProductRepository
	sink     session.UsageSink
	log      *slog.Logger
}

// NewTableService creates a new table service.
func NewTableService(tables repository.TableRepository, products repository.ProductRepository, sink session.UsageSink, log *slog.Logger) *TableService {
	return &TableService{
		tables:   tables,
		products: products,
		sink:     sink,
		log:      log,
	}
}

// ListTables returns the branch's tables.
func (s *TableService) ListTables(ctx context.Context, branch string) ([]models.TableOrder, error) {
	return s.tables.List(ctx, branch)
}

// CreateTable registers a new table with an empty order.
func (s *TableService) CreateTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error) {
	if tableNumber == "" {
		return models.TableOrder{}, fmt.Errorf("%w: table number is required", ErrInvalidTable)
	}
	if err := s.tables.CreateTable(ctx, branch, tableNumber); err != nil {
		return models.TableOrder{}, err
	}
	return s.tables.GetTable(ctx, branch, tableNumber)
}

// GetTable returns a table's current order document. Unlike the order
// operations below, an explicit read of an unknown table surfaces NotFound.
func (s *TableService) GetTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error) {
	return s.tables.GetTable(ctx, branch, tableNumber)
}

// AddProducts merges the selected items into the table's order. This is the
// "add to table" path: quantities for already-ordered products accumulate
// onto their existing lines, and status is not changed.
func (s *TableService) AddProducts(ctx context.Context, branch, tableNumber string, items []OrderItemRequest) (models.TableOrder, error) {
	selections, err := s.resolveSelections(ctx, branch, items)
	if err != nil {
		return models.TableOrder{}, err
	}

	sess, err := session.Open(ctx, s.tables, s.sink, s.log, branch, tableNumber)
	if err != nil {
		return models.TableOrder{}, err
	}
	if err := sess.MergeIntoOrder(ctx, selections); err != nil {
		return models.TableOrder{}, err
	}
	return sess.Table(), nil
}

// EditOrder applies a batch of quantity deltas and saves the result. Any
// out-of-range index aborts the whole batch before anything is persisted.
func (s *TableService) EditOrder(ctx context.Context, branch, tableNumber string, changes []EditChange) (models.TableOrder, error) {
	if len(changes) == 0 {
		return models.TableOrder{}, fmt.Errorf("%w: no edit changes supplied", ErrNoItems)
	}

	sess, err := session.Open(ctx, s.tables, s.sink, s.log, branch, tableNumber)
	if err != nil {
		return models.TableOrder{}, err
	}
	for _, ch := range changes {
		if err := sess.ApplyDelta(ch.Index, ch.Delta); err != nil {
			return models.TableOrder{}, err
		}
	}
	if err := sess.SaveChanges(ctx); err != nil {
		return models.TableOrder{}, err
	}
	return sess.Table(), nil
}

// SubmitOrder appends the staged items to the table's order, recomputes
// ingredient usage over the whole order, and marks it running.
func (s *TableService) SubmitOrder(ctx context.Context, branch, tableNumber string, items []OrderItemRequest) (models.TableOrder, error) {
	selections, err := s.resolveSelections(ctx, branch, items)
	if err != nil {
		return models.TableOrder{}, err
	}

	sess, err := session.Open(ctx, s.tables, s.sink, s.log, branch, tableNumber)
	if err != nil {
		return models.TableOrder{}, err
	}
	if err := sess.SubmitStaged(ctx, selections); err != nil {
		return models.TableOrder{}, err
	}
	return sess.Table(), nil
}

// resolveSelections looks up each referenced product and pairs it with the
// requested quantity. Product snapshots taken here are what end up on the
// order lines.
func (s *TableService) resolveSelections(ctx context.Context, branch string, items []OrderItemRequest) ([]order.Selection, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	selections := make([]order.Selection, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		product, err := s.products.GetByID(ctx, branch, item.ProductID)
		if err != nil {
			return nil, err
		}
		selections = append(selections, order.Selection{
			Product:  *product,
			Quantity: item.Quantity,
		})
	}
	return selections, nil
}

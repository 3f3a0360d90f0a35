// Package session orchestrates the order engines against a single table's
// persisted order document. A TableSession owns the one mutable TableOrder
// value; the engines in internal/order are pure and only the session is
// allowed to replace the document or write it out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/models"
	"github.com/tably/pos-backend/internal/order"
	"github.com/tably/pos-backend/internal/repository"
)

// Store is the document-store collaborator holding table order documents.
type Store interface {
	GetTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error)
	SaveTable(ctx context.Context, branch string, table models.TableOrder) error
}

// UsageSink receives the per-ingredient consumption report produced when an
// order is submitted. Whether it debits stock is entirely its business.
type UsageSink interface {
	PublishUsage(ctx context.Context, branch, tableNumber string, usage map[string]decimal.Decimal) error
}

// TableSession drives one table's order through its lifecycle. It is not
// safe for concurrent use: the model assumes at most one active editor per
// table, and a concurrent writer simply wins the last write.
type TableSession struct {
	store  Store
	sink   UsageSink
	log    *slog.Logger
	branch string
	table  models.TableOrder
}

// Open loads the table's current order document. A table that has never
// been ordered on starts as an implicit empty order rather than an error.
func Open(ctx context.Context, store Store, sink UsageSink, log *slog.Logger, branch, tableNumber string) (*TableSession, error) {
	table, err := store.GetTable(ctx, branch, tableNumber)
	if err != nil {
		if !errors.Is(err, repository.ErrTableNotFound) {
			return nil, fmt.Errorf("fetch table %s: %w", tableNumber, err)
		}
		table = models.NewTableOrder(tableNumber)
	}
	return &TableSession{
		store:  store,
		sink:   sink,
		log:    log,
		branch: branch,
		table:  table,
	}, nil
}

// Table returns a copy of the session's current order document.
func (s *TableSession) Table() models.TableOrder {
	return s.table.Clone()
}

// MergeIntoOrder merges the selections into the table's order and persists
// the new line set. Status and ingredient usage are left alone — only an
// explicit submit touches those. On a persistence failure the locally
// merged state is kept, not rolled back; the caller decides whether to
// re-attempt.
func (s *TableSession) MergeIntoOrder(ctx context.Context, selections []order.Selection) error {
	if err := order.ValidateSelections(selections); err != nil {
		return err
	}

	s.table.Orders = order.Merge(s.table.Orders, selections)

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.refetch(ctx)
	return nil
}

// ApplyDelta adjusts one line's quantity locally. Nothing is persisted
// until SaveChanges; an out-of-range index leaves the session untouched.
func (s *TableSession) ApplyDelta(index, delta int) error {
	edited, err := order.ApplyDelta(s.table.Orders, index, delta)
	if err != nil {
		return err
	}
	s.table.Orders = edited
	return nil
}

// SaveChanges persists whatever the edit engine has produced locally.
// It does not touch orderStatus or ingredientUsage.
func (s *TableSession) SaveChanges(ctx context.Context) error {
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.refetch(ctx)
	return nil
}

// SubmitStaged appends a separately staged selection list to the table's
// existing orders, recomputes ingredient usage over the entire resulting
// line set, marks the order running, and persists. Duplicate products
// within the staged list collapse into one line, but staged lines are not
// merged into existing ones; only MergeIntoOrder accumulates onto prior
// lines. After a successful write the usage report is handed to the
// inventory sink.
func (s *TableSession) SubmitStaged(ctx context.Context, staged []order.Selection) error {
	if err := order.ValidateSelections(staged); err != nil {
		return err
	}

	stagedLines := order.Merge(nil, staged)
	s.table.Orders = append(models.CloneLines(s.table.Orders), stagedLines...)
	s.table.IngredientUsage = order.AggregateUsage(s.table.Orders)
	s.table.OrderStatus = models.StatusRunning

	if err := s.persist(ctx); err != nil {
		return err
	}

	if err := s.sink.PublishUsage(ctx, s.branch, s.table.TableNumber, s.table.IngredientUsage); err != nil {
		// Usage hand-off is advisory; the submitted order stands.
		s.log.Error("failed to publish ingredient usage",
			"table", s.table.TableNumber,
			"error", err,
		)
	}

	s.refetch(ctx)
	return nil
}

func (s *TableSession) persist(ctx context.Context) error {
	if err := s.store.SaveTable(ctx, s.branch, s.table); err != nil {
		return fmt.Errorf("persist table %s: %w", s.table.TableNumber, err)
	}
	return nil
}

// refetch re-reads the just-written document so the session observes the
// stored value. A third-party writer may interleave; whatever is read back
// replaces the local copy. Read failures keep the local copy and are only
// logged — the write already succeeded.
func (s *TableSession) refetch(ctx context.Context) {
	table, err := s.store.GetTable(ctx, s.branch, s.table.TableNumber)
	if err != nil {
		s.log.Warn("refetch after write failed, keeping local state",
			"table", s.table.TableNumber,
			"error", err,
		)
		return
	}
	s.table = table
}

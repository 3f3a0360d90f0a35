package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/models"
	"github.com/tably/pos-backend/internal/order"
	"github.com/tably/pos-backend/internal/repository"
)

type fakeStore struct {
	tables  map[string]models.TableOrder
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[string]models.TableOrder)}
}

func (s *fakeStore) GetTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error) {
	table, ok := s.tables[branch+"/"+tableNumber]
	if !ok {
		return models.TableOrder{}, repository.ErrTableNotFound
	}
	return table.Clone(), nil
}

func (s *fakeStore) SaveTable(ctx context.Context, branch string, table models.TableOrder) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.tables[branch+"/"+table.TableNumber] = table.Clone()
	return nil
}

type fakeSink struct {
	err       error
	published []map[string]decimal.Decimal
}

func (s *fakeSink) PublishUsage(ctx context.Context, branch, tableNumber string, usage map[string]decimal.Decimal) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, usage)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func selection(name, price string, qty int, ingredients ...models.Ingredient) order.Selection {
	return order.Selection{
		Product: models.Product{
			ID:          name + "-id",
			Name:        name,
			Price:       decimal.RequireFromString(price),
			Ingredients: ingredients,
		},
		Quantity: qty,
	}
}

func TestOpen_UnknownTableStartsEmpty(t *testing.T) {
	store := newFakeStore()
	sess, err := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table := sess.Table()
	if table.TableNumber != "T1" {
		t.Errorf("tableNumber = %s, want T1", table.TableNumber)
	}
	if len(table.Orders) != 0 {
		t.Errorf("expected no lines, got %v", table.Orders)
	}
	if table.OrderStatus != models.StatusEmpty {
		t.Errorf("status = %s, want Empty", table.OrderStatus)
	}
	if store.saves != 0 {
		t.Errorf("open must not persist, saves = %d", store.saves)
	}
}

func TestMergeIntoOrder_PersistsLinesOnly(t *testing.T) {
	store := newFakeStore()
	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	err := sess.MergeIntoOrder(context.Background(), []order.Selection{
		selection("Burger", "5", 2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.tables["BR1/T1"]
	if len(stored.Orders) != 1 || stored.Orders[0].Quantity != 2 {
		t.Fatalf("stored lines = %v", stored.Orders)
	}
	if stored.OrderStatus != models.StatusEmpty {
		t.Errorf("merge changed stored status to %s", stored.OrderStatus)
	}
	if len(stored.IngredientUsage) != 0 {
		t.Errorf("merge touched ingredient usage: %v", stored.IngredientUsage)
	}
	// Lines exist but nothing was submitted, so the table presents as pending.
	if got := sess.Table().EffectiveStatus(); got != models.StatusPending {
		t.Errorf("effective status = %s, want Pending Order", got)
	}
}

func TestMergeIntoOrder_AccumulatesIntoExistingLine(t *testing.T) {
	store := newFakeStore()
	existing := models.NewTableOrder("T1")
	existing.Orders = []models.OrderLine{{Name: "Fries", Price: decimal.NewFromInt(3), Quantity: 1}}
	store.tables["BR1/T1"] = existing

	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")
	if err := sess.MergeIntoOrder(context.Background(), []order.Selection{selection("Fries", "3", 2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table := sess.Table()
	if len(table.Orders) != 1 || table.Orders[0].Quantity != 3 {
		t.Errorf("lines = %v, want single Fries line with quantity 3", table.Orders)
	}
}

func TestMergeIntoOrder_InvalidSelectionDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	err := sess.MergeIntoOrder(context.Background(), []order.Selection{
		selection("", "5", 1),
	})
	if !errors.Is(err, order.ErrInvalidSelection) {
		t.Fatalf("error = %v, want ErrInvalidSelection", err)
	}
	if store.saves != 0 {
		t.Errorf("invalid merge persisted, saves = %d", store.saves)
	}
}

func TestMergeIntoOrder_PersistFailureKeepsLocalState(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("write refused")
	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	err := sess.MergeIntoOrder(context.Background(), []order.Selection{selection("Burger", "5", 2)})
	if err == nil {
		t.Fatal("expected persistence error")
	}

	// The locally merged state survives the failed write.
	table := sess.Table()
	if len(table.Orders) != 1 || table.Orders[0].Name != "Burger" {
		t.Errorf("local state lost after failed persist: %v", table.Orders)
	}
}

func TestApplyDeltaAndSaveChanges(t *testing.T) {
	store := newFakeStore()
	existing := models.NewTableOrder("T1")
	existing.Orders = []models.OrderLine{
		{Name: "Soda", Price: decimal.NewFromInt(2), Quantity: 1},
		{Name: "Pizza", Price: decimal.NewFromInt(9), Quantity: 2},
	}
	store.tables["BR1/T1"] = existing

	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	if err := sess.ApplyDelta(0, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("edit persisted before save, saves = %d", store.saves)
	}

	if err := sess.SaveChanges(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.tables["BR1/T1"]
	if len(stored.Orders) != 1 || stored.Orders[0].Name != "Pizza" {
		t.Errorf("stored lines = %v, want only Pizza", stored.Orders)
	}
	if stored.OrderStatus != models.StatusEmpty {
		t.Errorf("save changed status to %s", stored.OrderStatus)
	}
}

func TestApplyDelta_OutOfRangeLeavesSessionUntouched(t *testing.T) {
	store := newFakeStore()
	existing := models.NewTableOrder("T1")
	existing.Orders = []models.OrderLine{{Name: "Soda", Price: decimal.NewFromInt(2), Quantity: 1}}
	store.tables["BR1/T1"] = existing

	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	if err := sess.ApplyDelta(5, -1); !errors.Is(err, order.ErrLineOutOfRange) {
		t.Fatalf("error = %v, want ErrLineOutOfRange", err)
	}

	table := sess.Table()
	if len(table.Orders) != 1 || table.Orders[0].Quantity != 1 {
		t.Errorf("session mutated by failed edit: %v", table.Orders)
	}
}

func TestSubmitStaged(t *testing.T) {
	store := newFakeStore()
	existing := models.NewTableOrder("T7")
	existing.Orders = []models.OrderLine{
		{
			Name:        "Salad",
			Price:       decimal.NewFromInt(4),
			Quantity:    1,
			Ingredients: []models.Ingredient{{IngredientName: "lettuce", Quantity: decimal.NewFromInt(1)}},
		},
	}
	store.tables["BR1/T7"] = existing

	sink := &fakeSink{}
	sess, _ := Open(context.Background(), store, sink, testLogger(), "BR1", "T7")

	err := sess.SubmitStaged(context.Background(), []order.Selection{
		selection("Pizza", "9", 2, models.Ingredient{IngredientName: "cheese", Quantity: decimal.NewFromInt(1)}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.tables["BR1/T7"]
	if len(stored.Orders) != 2 {
		t.Fatalf("expected existing + staged lines, got %v", stored.Orders)
	}
	if stored.OrderStatus != models.StatusRunning {
		t.Errorf("status = %s, want Running Order", stored.OrderStatus)
	}
	// Usage covers the entire line set, not just the staged items.
	if !stored.IngredientUsage["lettuce"].Equal(decimal.NewFromInt(1)) {
		t.Errorf("lettuce usage = %s, want 1", stored.IngredientUsage["lettuce"])
	}
	if !stored.IngredientUsage["cheese"].Equal(decimal.NewFromInt(2)) {
		t.Errorf("cheese usage = %s, want 2", stored.IngredientUsage["cheese"])
	}

	if len(sink.published) != 1 {
		t.Fatalf("expected one usage report, got %d", len(sink.published))
	}
	if !sink.published[0]["cheese"].Equal(decimal.NewFromInt(2)) {
		t.Errorf("published cheese = %s, want 2", sink.published[0]["cheese"])
	}
}

func TestSubmitStaged_DuplicateStagedItemsCollapse(t *testing.T) {
	store := newFakeStore()
	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	err := sess.SubmitStaged(context.Background(), []order.Selection{
		selection("Pizza", "9", 1),
		selection("Pizza", "9", 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table := sess.Table()
	if len(table.Orders) != 1 || table.Orders[0].Quantity != 2 {
		t.Errorf("staged duplicates did not collapse: %v", table.Orders)
	}
}

func TestSubmitStaged_DoesNotMergeIntoExistingLines(t *testing.T) {
	store := newFakeStore()
	existing := models.NewTableOrder("T1")
	existing.Orders = []models.OrderLine{{Name: "Pizza", Price: decimal.NewFromInt(9), Quantity: 1}}
	store.tables["BR1/T1"] = existing

	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")
	if err := sess.SubmitStaged(context.Background(), []order.Selection{selection("Pizza", "9", 2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Submit appends; it is a distinct path from the merging add flow.
	table := sess.Table()
	if len(table.Orders) != 2 {
		t.Fatalf("expected append without merge, got %v", table.Orders)
	}
	if table.Orders[0].Quantity != 1 || table.Orders[1].Quantity != 2 {
		t.Errorf("quantities = %d,%d, want 1,2", table.Orders[0].Quantity, table.Orders[1].Quantity)
	}
}

func TestSubmitStaged_SinkFailureDoesNotFailSubmit(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{err: errors.New("broker down")}
	sess, _ := Open(context.Background(), store, sink, testLogger(), "BR1", "T1")

	err := sess.SubmitStaged(context.Background(), []order.Selection{selection("Pizza", "9", 1)})
	if err != nil {
		t.Fatalf("submit failed on sink error: %v", err)
	}

	stored := store.tables["BR1/T1"]
	if stored.OrderStatus != models.StatusRunning {
		t.Errorf("status = %s, want Running Order", stored.OrderStatus)
	}
}

func TestSubmitStaged_PersistFailureSkipsSink(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("write refused")
	sink := &fakeSink{}
	sess, _ := Open(context.Background(), store, sink, testLogger(), "BR1", "T1")

	err := sess.SubmitStaged(context.Background(), []order.Selection{selection("Pizza", "9", 1)})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if len(sink.published) != 0 {
		t.Errorf("usage published despite failed persist")
	}
	// Local state keeps the optimistic mutation.
	if got := sess.Table().OrderStatus; got != models.StatusRunning {
		t.Errorf("local status = %s, want Running Order", got)
	}
}

func TestSaveChanges_LastWriteWins(t *testing.T) {
	store := newFakeStore()
	sess, _ := Open(context.Background(), store, &fakeSink{}, testLogger(), "BR1", "T1")

	if err := sess.MergeIntoOrder(context.Background(), []order.Selection{selection("Burger", "5", 1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A concurrent editor replaces the document; our later save silently
	// overwrites it. There is no merge and no version check.
	interloper := models.NewTableOrder("T1")
	interloper.Orders = []models.OrderLine{{Name: "Cake", Price: decimal.NewFromInt(5), Quantity: 1}}
	store.tables["BR1/T1"] = interloper

	if err := sess.SaveChanges(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.tables["BR1/T1"]
	if len(stored.Orders) != 1 || stored.Orders[0].Name != "Burger" {
		t.Errorf("stored lines = %v, want the session's Burger line", stored.Orders)
	}
}

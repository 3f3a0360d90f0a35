package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tably/pos-backend/internal/middleware"
	"github.com/tably/pos-backend/internal/order"
	"github.com/tably/pos-backend/internal/repository"
	"github.com/tably/pos-backend/internal/service"
)

// TableHandler handles table-order HTTP requests.
type TableHandler struct {
	service *service.TableService
	logger  *slog.Logger
}

// NewTableHandler creates a new table handler.
func NewTableHandler(service *service.TableService, logger *slog.Logger) *TableHandler {
	return &TableHandler{
		service: service,
		logger:  logger,
	}
}

// CreateTableRequest carries a new table registration.
type CreateTableRequest struct {
	TableNumber string `json:"tableNumber"`
}

// OrderItemsRequest carries product selections for the add and submit paths.
type OrderItemsRequest struct {
	Items []service.OrderItemRequest `json:"items"`
}

// EditOrderRequest carries a batch of quantity deltas to apply and save.
type EditOrderRequest struct {
	Changes []service.EditChange `json:"changes"`
}

// ListTables handles GET /api/table
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	tables, err := h.service.ListTables(ctx, branch)
	if err != nil {
		h.logger.Error("failed to list tables", "branch", branch, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, tables, h.logger)
}

// CreateTable handles POST /api/table
func (h *TableHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode table request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if req.TableNumber == "" {
		WriteError(w, http.StatusBadRequest, "Table number is required", h.logger)
		return
	}

	table, err := h.service.CreateTable(ctx, branch, req.TableNumber)
	if err != nil {
		if errors.Is(err, repository.ErrTableExists) {
			WriteError(w, http.StatusConflict, "Table already exists", h.logger)
			return
		}
		if errors.Is(err, service.ErrInvalidTable) {
			WriteError(w, http.StatusBadRequest, "Table number is required", h.logger)
			return
		}
		h.logger.Error("failed to create table", "table", req.TableNumber, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	h.logger.Info("table created", "table", table.TableNumber, "branch", branch)
	WriteJSON(w, http.StatusCreated, table, h.logger)
}

// GetTable handles GET /api/table/{tableNumber}
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)
	tableNumber := chi.URLParam(r, "tableNumber")

	table, err := h.service.GetTable(ctx, branch, tableNumber)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			WriteError(w, http.StatusNotFound, "Table not found", h.logger)
			return
		}
		h.logger.Error("failed to get table", "table", tableNumber, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, table, h.logger)
}

// AddProducts handles POST /api/table/{tableNumber}/order
// Merges the selected products into the table's order.
func (h *TableHandler) AddProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)
	tableNumber := chi.URLParam(r, "tableNumber")

	var req OrderItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	table, err := h.service.AddProducts(ctx, branch, tableNumber, req.Items)
	if err != nil {
		h.writeOrderError(w, err, tableNumber)
		return
	}

	h.logger.Info("products added to table", "table", tableNumber, "lines", len(table.Orders))
	WriteJSON(w, http.StatusOK, table, h.logger)
}

// EditOrder handles POST /api/table/{tableNumber}/order/edits
// Applies quantity deltas and saves the edited order.
func (h *TableHandler) EditOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)
	tableNumber := chi.URLParam(r, "tableNumber")

	var req EditOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode edit request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	table, err := h.service.EditOrder(ctx, branch, tableNumber, req.Changes)
	if err != nil {
		h.writeOrderError(w, err, tableNumber)
		return
	}

	h.logger.Info("order edited", "table", tableNumber, "lines", len(table.Orders))
	WriteJSON(w, http.StatusOK, table, h.logger)
}

// SubmitOrder handles POST /api/table/{tableNumber}/order/submit
// Appends the staged items, recomputes ingredient usage and marks the
// order running.
func (h *TableHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)
	tableNumber := chi.URLParam(r, "tableNumber")

	var req OrderItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode submit request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	table, err := h.service.SubmitOrder(ctx, branch, tableNumber, req.Items)
	if err != nil {
		h.writeOrderError(w, err, tableNumber)
		return
	}

	h.logger.Info("order submitted", "table", tableNumber, "status", table.OrderStatus)
	WriteJSON(w, http.StatusOK, table, h.logger)
}

// writeOrderError maps order-operation errors onto HTTP statuses.
func (h *TableHandler) writeOrderError(w http.ResponseWriter, err error, tableNumber string) {
	switch {
	case errors.Is(err, service.ErrNoItems):
		WriteError(w, http.StatusBadRequest, "No items selected", h.logger)
	case errors.Is(err, service.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.logger)
	case errors.Is(err, order.ErrInvalidSelection):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, repository.ErrProductNotFound):
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, order.ErrLineOutOfRange):
		WriteError(w, http.StatusUnprocessableEntity, "Order line index out of range", h.logger)
	default:
		h.logger.Error("order operation failed", "table", tableNumber, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tably/pos-backend/internal/middleware"
	"github.com/tably/pos-backend/internal/service"
)

// StockHandler handles inventory HTTP requests.
type StockHandler struct {
	service *service.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(service *service.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger,
	}
}

// ListItems handles GET /api/inventory
func (h *StockHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	items, err := h.service.ListItems(ctx, branch)
	if err != nil {
		h.logger.Error("failed to list stock items", "branch", branch, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.logger)
}

// AddItem handles POST /api/inventory
func (h *StockHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	var req service.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode stock item request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	item, err := h.service.AddItem(ctx, branch, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStockItem) {
			WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		h.logger.Error("failed to add stock item", "branch", branch, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	h.logger.Info("stock item added", "itemId", item.ID, "ingredient", item.IngredientName, "branch", branch)
	WriteJSON(w, http.StatusCreated, item, h.logger)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tably/pos-backend/internal/middleware"
	"github.com/tably/pos-backend/internal/repository"
	"github.com/tably/pos-backend/internal/service"
)

// ProductHandler handles catalog HTTP requests.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/product
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	products, err := h.service.ListProducts(ctx, branch)
	if err != nil {
		h.logger.Error("failed to list products", "branch", branch, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// ListGrouped handles GET /api/product/grouped
// Groups the branch catalog by subcategory for menu presentation.
func (h *ProductHandler) ListGrouped(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	grouped, err := h.service.ListGrouped(ctx, branch)
	if err != nil {
		h.logger.Error("failed to group products", "branch", branch, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, grouped, h.logger)
}

// GetProduct handles GET /api/product/{productId}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)
	productID := chi.URLParam(r, "productId")

	if productID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(ctx, branch, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}
		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct handles POST /api/product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	branch := middleware.BranchFromContext(ctx)

	var req service.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode product request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.CreateProduct(ctx, branch, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		h.logger.Error("failed to create product", "branch", branch, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	h.logger.Info("product created", "productId", product.ID, "name", product.Name, "branch", branch)
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

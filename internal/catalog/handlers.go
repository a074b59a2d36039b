package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pod-catalog/internal/auth"
	"pod-catalog/internal/logger"
)

// ProductProvider is the service surface the handlers talk to. The mongo
// Store satisfies it; tests substitute a fake.
type ProductProvider interface {
	ListPage(ctx context.Context, params ListParams) ([]Product, Pagination, error)
	GetAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	Health(ctx context.Context) HealthStatus
}

// Handler handles HTTP requests for catalog operations
type Handler struct {
	store ProductProvider
}

// NewHandler creates a new catalog handler
func NewHandler(store ProductProvider) *Handler {
	return &Handler{store: store}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:       1,
		Limit:      DefaultLimit,
		Search:     r.URL.Query().Get("search"),
		CategoryID: r.URL.Query().Get("categoryId"),
	}

	if pStr := r.URL.Query().Get("page"); pStr != "" {
		p, err := strconv.Atoi(pStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pagination parameters", "page must be an integer")
			return
		}
		params.Page = p
	}
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		l, err := strconv.Atoi(lStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pagination parameters", "limit must be an integer")
			return
		}
		params.Limit = l
	}

	products, pagination, err := h.store.ListPage(r.Context(), params)
	if errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidLimit) {
		writeError(w, http.StatusBadRequest, "invalid pagination parameters", err.Error())
		return
	}
	if err != nil {
		logger.Errorf("ListProducts: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{Data: products, Pagination: pagination})
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		logger.Errorf("GetProduct: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found", "")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products (admin only)
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if p.Name == "" || p.Price < 0 {
		writeError(w, http.StatusBadRequest, "name is required and price must be non-negative", "")
		return
	}

	created, err := h.store.Create(r.Context(), p)
	if err != nil {
		logger.Errorf("CreateProduct: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create product", "")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/products/{id} (admin only)
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var upd ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	product, err := h.store.Update(r.Context(), id, upd)
	if err != nil {
		logger.Errorf("UpdateProduct: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update product", "")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found", "")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id} (admin only). Deleting
// an id that does not exist reports deleted:false, not an error.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		logger.Errorf("DeleteProduct: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete product", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// HealthCheck handles GET /api/health. It never fails the request;
// store trouble becomes a structured unhealthy payload.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.store.Health(r.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// RequireAdmin is middleware that requires a valid JWT token with admin role
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.GetBearerToken(r)
		if tokenStr == "" {
			logger.Debugf("RequireAdmin: no bearer token provided")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			logger.Debugf("RequireAdmin: JWT parse error: %v", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !auth.HasRole(claims.Roles, auth.RoleAdmin) {
			logger.Debugf("RequireAdmin: user lacks admin role")
			http.Error(w, "forbidden - admin role required", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.createProduct)           // POST  /api/v1/products
		r.Get("/", h.listProducts)             // GET   /api/v1/products?store_id=&category=
		r.Get("/{id}", h.getProduct)           // GET   /api/v1/products/{id}
		r.Put("/{id}", h.updateProduct)        // PUT   /api/v1/products/{id}
		r.Patch("/{id}/stock", h.adjustStock)  // PATCH /api/v1/products/{id}/stock
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respondErr(w, err)
		return
	}
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("store_id")
	category := r.URL.Query().Get("category")
	products, err := h.service.ListProducts(r.Context(), storeID, category)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respondErr(w, err)
		return
	}
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respondErr(w, err)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func requireAdmin(r *http.Request) error {
	actor, ok := common.ActorFromContext(r.Context())
	if !ok {
		return apperr.Authorizationf("login required")
	}
	if !actor.IsAdmin() {
		return apperr.Authorizationf("not allowed")
	}
	return nil
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

package store

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// Handler exposes store HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Post("/", h.createStore)          // POST  /api/v1/stores
		r.Get("/", h.listStores)            // GET   /api/v1/stores?active=true
		r.Get("/{id}", h.getStore)           // GET   /api/v1/stores/{id}
		r.Put("/{id}", h.updateStore)        // PUT   /api/v1/stores/{id}
		r.Patch("/{id}/active", h.setActive) // PATCH /api/v1/stores/{id}/active
	})
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respondErr(w, err)
		return
	}
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	st, err := h.service.CreateStore(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, st)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.GetStore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	stores, err := h.service.ListStores(r.Context(), activeOnly)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, stores)
}

func (h *Handler) updateStore(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respondErr(w, err)
		return
	}
	var req UpdateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	st, err := h.service.UpdateStore(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respondErr(w, err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "updated"})
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

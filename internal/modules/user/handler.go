package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// Handler exposes user HTTP endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Post("/api/v1/users/register", h.register)
	router.Get("/api/v1/users/{id}", h.getUser)
	router.Put("/api/v1/users/{id}/profile", h.updateProfile)
	router.Post("/api/v1/users/{id}/topup", h.topUp)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, u)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := requireSelfOrAdmin(r, id); err != nil {
		respondErr(w, err)
		return
	}
	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := requireSelfOrAdmin(r, id); err != nil {
		respondErr(w, err)
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.service.UpdateProfile(r.Context(), id, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) topUp(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := requireSelfOrAdmin(r, id); err != nil {
		respondErr(w, err)
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.service.TopUp(r.Context(), id, req.Amount)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func requireSelfOrAdmin(r *http.Request, id string) error {
	actor, ok := common.ActorFromContext(r.Context())
	if !ok {
		return apperr.Authorizationf("login required")
	}
	if actor.IsAdmin() || actor.UserID.String() == id {
		return nil
	}
	return apperr.Authorizationf("not allowed")
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

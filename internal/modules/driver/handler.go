package driver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/auth"
	"github.com/martminds/martminds-backend/internal/modules/user"
)

// Handler exposes driver fleet HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/drivers", func(r chi.Router) {
		r.Get("/", h.listDrivers)           // GET  /api/v1/drivers?available=true
		r.Get("/{id}/stats", h.driverStats) // GET  /api/v1/drivers/{id}/stats
		r.With(auth.RequireRole(string(user.RoleAdmin))).
			Post("/assign", h.assignFirstAvailable) // POST /api/v1/drivers/assign
		r.Post("/orders/{orderID}/complete", h.complete) // POST /api/v1/drivers/orders/{orderID}/complete
	})
}

func (h *Handler) listDrivers(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	list := h.service.ListDrivers
	if r.URL.Query().Get("available") == "true" {
		list = h.service.ListAvailable
	}
	drivers, err := list(r.Context(), actor)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, drivers)
}

func (h *Handler) driverStats(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, apperr.Validationf("invalid id"))
		return
	}
	stats, err := h.service.DriverStats(r.Context(), actor, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

func (h *Handler) assignFirstAvailable(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req struct {
		OrderID uuid.UUID `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.AssignFirstAvailable(r.Context(), actor, req.OrderID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		respondErr(w, apperr.Validationf("invalid orderID"))
		return
	}
	o, err := h.service.CompleteDelivery(r.Context(), actor, orderID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func requireActor(r *http.Request) (common.Actor, error) {
	actor, ok := common.ActorFromContext(r.Context())
	if !ok {
		return common.Actor{}, apperr.Authorizationf("login required")
	}
	return actor, nil
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

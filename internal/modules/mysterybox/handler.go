package mysterybox

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// Handler exposes mystery box HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/boxes", func(r chi.Router) {
		r.Post("/", h.createBox)                  // POST /api/v1/boxes
		r.Get("/", h.listBoxes)                   // GET  /api/v1/boxes?store_id=
		r.Get("/{id}", h.getBox)                  // GET  /api/v1/boxes/{id}
		r.Post("/{id}/purchase", h.purchase)      // POST /api/v1/boxes/{id}/purchase
		r.Get("/purchases", h.listPurchases)      // GET  /api/v1/boxes/purchases?customer_id=
	})
}

func (h *Handler) createBox(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req CreateBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b, err := h.service.CreateBox(r.Context(), actor, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, b)
}

func (h *Handler) getBox(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, apperr.Validationf("invalid id"))
		return
	}
	b, err := h.service.GetBox(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *Handler) listBoxes(w http.ResponseWriter, r *http.Request) {
	storeID := uuid.Nil
	if raw := r.URL.Query().Get("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondErr(w, apperr.Validationf("invalid store_id"))
			return
		}
		storeID = id
	}
	boxes, err := h.service.ListBoxes(r.Context(), storeID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, boxes)
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
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
	p, err := h.service.Purchase(r.Context(), actor, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	customerID := actor.UserID
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondErr(w, apperr.Validationf("invalid customer_id"))
			return
		}
		customerID = id
	}
	purchases, err := h.service.ListPurchases(r.Context(), actor, customerID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, purchases)
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

package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)                       // POST   /api/v1/orders
		r.Get("/", h.listOrders)                        // GET    /api/v1/orders?customer_id=|store_id=|driver_id=
		r.Get("/{id}", h.getOrder)                      // GET    /api/v1/orders/{id}
		r.Get("/number/{number}", h.getOrderByNumber)   // GET    /api/v1/orders/number/{number}
		r.Post("/{id}/items", h.addItem)                // POST   /api/v1/orders/{id}/items
		r.Delete("/{id}/items/{itemID}", h.removeItem)  // DELETE /api/v1/orders/{id}/items/{itemID}
		r.Patch("/{id}/status", h.updateStatus)         // PATCH  /api/v1/orders/{id}/status
		r.Post("/{id}/assign", h.assignDriver)          // POST   /api/v1/orders/{id}/assign
		r.Post("/{id}/delivered", h.markDelivered)      // POST   /api/v1/orders/{id}/delivered
		r.Post("/{id}/cancel", h.cancelOrder)           // POST   /api/v1/orders/{id}/cancel
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), actor, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	o, err := h.service.GetOrder(r.Context(), actor, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	o, err := h.service.GetOrderByNumber(r.Context(), actor, chi.URLParam(r, "number"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var (
		orders []*Order
		q      = r.URL.Query()
	)
	switch {
	case q.Get("customer_id") != "":
		id, perr := uuid.Parse(q.Get("customer_id"))
		if perr != nil {
			respondErr(w, apperr.Validationf("invalid customer_id"))
			return
		}
		orders, err = h.service.ListByCustomer(r.Context(), actor, id)
	case q.Get("store_id") != "":
		id, perr := uuid.Parse(q.Get("store_id"))
		if perr != nil {
			respondErr(w, apperr.Validationf("invalid store_id"))
			return
		}
		orders, err = h.service.ListByStore(r.Context(), actor, id)
	case q.Get("driver_id") != "":
		id, perr := uuid.Parse(q.Get("driver_id"))
		if perr != nil {
			respondErr(w, apperr.Validationf("invalid driver_id"))
			return
		}
		orders, err = h.service.ListByDriver(r.Context(), actor, id)
	default:
		orders, err = h.service.ListByCustomer(r.Context(), actor, actor.UserID)
	}
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.AddItem(r.Context(), actor, id, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	itemID, err := parseID(r, "itemID")
	if err != nil {
		respondErr(w, err)
		return
	}
	o, err := h.service.RemoveItem(r.Context(), actor, id, itemID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) assignDriver(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	var req struct {
		DriverID uuid.UUID `json:"driver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.AssignDriver(r.Context(), actor, id, req.DriverID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	o, err := h.service.MarkDelivered(r.Context(), actor, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, err)
		return
	}
	o, err := h.service.CancelOrder(r.Context(), actor, id)
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

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.Validationf("invalid %s", param)
	}
	return id, nil
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

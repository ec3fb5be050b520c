package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// Handler exposes payment HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", h.createPayment)            // POST /api/v1/payments
		r.Get("/", h.listPayments)              // GET  /api/v1/payments?order_id=|user_id=|status=
		r.Get("/{id}", h.getPayment)            // GET  /api/v1/payments/{id}
		r.Post("/{id}/process", h.process)      // POST /api/v1/payments/{id}/process
		r.Post("/{id}/refund", h.refund)        // POST /api/v1/payments/{id}/refund
		r.Post("/{id}/cancel", h.cancel)        // POST /api/v1/payments/{id}/cancel
		r.Get("/users/{userID}/total", h.total) // GET  /api/v1/payments/users/{userID}/total
	})
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreatePayment(r.Context(), actor, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, h.service.GetPayment)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, h.service.ProcessPayment)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, h.service.RefundPayment)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, h.service.CancelPayment)
}

func (h *Handler) paymentAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor common.Actor, id uuid.UUID) (*Payment, error)) {
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
	p, err := fn(r.Context(), actor, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	q := r.URL.Query()
	var payments []*Payment
	switch {
	case q.Get("order_id") != "":
		id, perr := uuid.Parse(q.Get("order_id"))
		if perr != nil {
			respondErr(w, apperr.Validationf("invalid order_id"))
			return
		}
		payments, err = h.service.ListByOrder(r.Context(), actor, id)
	case q.Get("user_id") != "":
		id, perr := uuid.Parse(q.Get("user_id"))
		if perr != nil {
			respondErr(w, apperr.Validationf("invalid user_id"))
			return
		}
		payments, err = h.service.ListByUser(r.Context(), actor, id)
	case q.Get("status") != "":
		payments, err = h.service.ListByStatus(r.Context(), actor, Status(q.Get("status")))
	default:
		payments, err = h.service.ListByUser(r.Context(), actor, actor.UserID)
	}
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, payments)
}

func (h *Handler) total(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	userID, err := parseID(r, "userID")
	if err != nil {
		respondErr(w, err)
		return
	}
	total, err := h.service.TotalPaidByUser(r.Context(), actor, userID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]float64{"total": total})
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

package mysterybox

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/catalog"
)

// Catalog resolves candidate products, satisfied by catalog.Service.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Service sells mystery boxes.
type Service interface {
	CreateBox(ctx context.Context, actor common.Actor, req CreateBoxRequest) (*Box, error)
	GetBox(ctx context.Context, id uuid.UUID) (*Box, error)
	ListBoxes(ctx context.Context, storeID uuid.UUID) ([]*Box, error)

	// Purchase sells one box: decrements stock, draws a random candidate
	// product and records the sale with the revealed product.
	Purchase(ctx context.Context, actor common.Actor, boxID uuid.UUID) (*Purchase, error)

	ListPurchases(ctx context.Context, actor common.Actor, customerID uuid.UUID) ([]*Purchase, error)
}

type service struct {
	repo    Repository
	catalog Catalog
	pick    func(n int) int
}

// NewService wires the mystery box service.
func NewService(repo Repository, cat Catalog) Service {
	return &service{repo: repo, catalog: cat, pick: rand.Intn}
}

func (s *service) CreateBox(ctx context.Context, actor common.Actor, req CreateBoxRequest) (*Box, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorizationf("only admins can create boxes")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.Validationf("invalid store id")
	}
	// Every candidate must be a real product of the same store.
	for _, candidate := range req.Candidates {
		p, err := s.catalog.GetProduct(ctx, candidate.String())
		if err != nil {
			return nil, err
		}
		if p.StoreID != storeID {
			return nil, apperr.Validationf("candidate %s does not belong to store %s", candidate, storeID)
		}
	}
	now := time.Now()
	b := &Box{
		ID:          uuid.New(),
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Candidates:  append([]uuid.UUID(nil), req.Candidates...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateBox(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBox(ctx context.Context, id uuid.UUID) (*Box, error) {
	return s.repo.GetBoxByID(ctx, id)
}

func (s *service) ListBoxes(ctx context.Context, storeID uuid.UUID) ([]*Box, error) {
	return s.repo.ListBoxes(ctx, storeID)
}

func (s *service) Purchase(ctx context.Context, actor common.Actor, boxID uuid.UUID) (*Purchase, error) {
	if actor.UserID == uuid.Nil {
		return nil, apperr.Authorizationf("authentication required")
	}
	b, err := s.repo.GetBoxByID(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if len(b.Candidates) == 0 {
		return nil, apperr.Validationf("box %s has no candidate products", b.Name)
	}

	// Take the box off the shelf before drawing; the decrement is the
	// atomic gate against overselling.
	if err := s.repo.DecrementStock(ctx, boxID); err != nil {
		return nil, err
	}

	revealed := b.Candidates[s.pick(len(b.Candidates))]
	p := &Purchase{
		ID:         uuid.New(),
		BoxID:      b.ID,
		CustomerID: actor.UserID,
		ProductID:  revealed,
		PricePaid:  b.Price,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.RecordPurchase(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPurchases(ctx context.Context, actor common.Actor, customerID uuid.UUID) ([]*Purchase, error) {
	if !actor.IsAdmin() && !actor.Is(customerID) {
		return nil, apperr.Authorizationf("not allowed to view these purchases")
	}
	return s.repo.ListPurchasesByCustomer(ctx, customerID)
}

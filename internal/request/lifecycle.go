package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/catalog"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// ErrInvalidStatus means the requested lifecycle value is not one of the
// eight known statuses.
var ErrInvalidStatus = errors.New("invalid request status")

// Lifecycle creates requests validated against the catalog and moves them
// through the status machine, appending to the append-only history.
type Lifecycle struct {
	store     Store
	validator *catalog.Validator
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(store Store, validator *catalog.Validator) *Lifecycle {
	return &Lifecycle{store: store, validator: validator}
}

// Create validates the submission as a whole batch against the catalog and
// persists it with status pending plus the first history entry. When any
// product entry has no matching assignment (or the assignment's sector does
// not match the given sector) the whole submission is rejected with a
// catalog.ValidationError and nothing is stored.
func (l *Lifecycle) Create(ctx context.Context, payload models.CreateRequestPayload) (models.Request, error) {
	if err := l.validator.ValidateProducts(ctx, payload.Products, payload.SectorID); err != nil {
		return models.Request{}, err
	}

	// Derived convenience field: the distinct group ids across the entries.
	var groupIDs []string
	seen := make(map[string]bool)
	for _, p := range payload.Products {
		if !seen[p.ProductionGroupID] {
			seen[p.ProductionGroupID] = true
			groupIDs = append(groupIDs, p.ProductionGroupID)
		}
	}

	var sectorID *string
	if payload.SectorID != "" {
		sectorID = &payload.SectorID
	}

	req := models.Request{
		CompanyName:        payload.CompanyName,
		FirstName:          payload.FirstName,
		LastName:           payload.LastName,
		Email:              payload.Email,
		Phone:              payload.Phone,
		Address:            payload.Address,
		SectorID:           sectorID,
		ProductionGroupIDs: groupIDs,
		Products:           payload.Products,
		Status:             models.StatusPending,
		StatusHistory: []models.StatusHistoryEntry{{
			Status:    models.StatusPending,
			Note:      "request created",
			Timestamp: time.Now().UTC(),
		}},
	}

	created, err := l.store.CreateRequest(ctx, req)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to persist request: %w", err)
	}
	return created, nil
}

// Transition sets the request's status to any of the eight known values and
// appends one history entry. There is no reachability check between statuses;
// the membership check is the only guard.
func (l *Lifecycle) Transition(ctx context.Context, id string, status models.RequestStatus, note, updatedBy string) (models.Request, error) {
	if !status.IsValid() {
		return models.Request{}, ErrInvalidStatus
	}

	return l.store.AppendRequestStatus(ctx, id, models.StatusHistoryEntry{
		Status:    status,
		Note:      note,
		UpdatedBy: updatedBy,
		Timestamp: time.Now().UTC(),
	})
}

// Get fetches one request with its full history.
func (l *Lifecycle) Get(ctx context.Context, id string) (models.Request, error) {
	return l.store.GetRequest(ctx, id)
}

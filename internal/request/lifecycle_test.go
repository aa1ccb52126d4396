package request_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/catalog"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/db"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/db/dbtest"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/request"
)

func newLifecycle(store *dbtest.MemStore) *request.Lifecycle {
	return request.NewLifecycle(store, catalog.NewValidator(store))
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	sectorID, groupID, hingeID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	_, _, bracketID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Bracket")

	created, err := lifecycle.Create(ctx, models.CreateRequestPayload{
		CompanyName: "Acme Ltd",
		Email:       "buyer@acme.example",
		Phone:       "+90 555 000 0000",
		SectorID:    sectorID,
		Products: []models.RequestProduct{
			{ProductID: hingeID, ProductionGroupID: groupID},
			{ProductID: bracketID, ProductionGroupID: groupID},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	require.NotNil(t, created.SectorID)
	assert.Equal(t, sectorID, *created.SectorID)

	// Group ids are derived and deduplicated from the product entries.
	assert.Equal(t, []string{groupID}, created.ProductionGroupIDs)

	require.Len(t, created.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, created.StatusHistory[0].Status)
	assert.False(t, created.StatusHistory[0].Timestamp.IsZero())
}

func TestCreateRequestWithoutSector(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	_, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")

	created, err := lifecycle.Create(ctx, models.CreateRequestPayload{
		CompanyName: "Acme Ltd",
		Email:       "buyer@acme.example",
		Phone:       "+90 555 000 0000",
		Products:    []models.RequestProduct{{ProductID: productID, ProductionGroupID: groupID}},
	})
	require.NoError(t, err)
	assert.Nil(t, created.SectorID)
}

func TestCreateRequestRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")

	_, err := lifecycle.Create(ctx, models.CreateRequestPayload{
		CompanyName: "Acme Ltd",
		Email:       "buyer@acme.example",
		Phone:       "+90 555 000 0000",
		SectorID:    sectorID,
		Products: []models.RequestProduct{
			{ProductID: productID, ProductionGroupID: groupID},
			{ProductID: "ghost", ProductionGroupID: groupID},
		},
	})

	var validationErr *catalog.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Entries, 1)
	assert.Equal(t, 1, validationErr.Entries[0].Index)

	// One bad entry rejects everything; nothing was stored.
	_, total, listErr := store.ListRequests(ctx, models.RequestFilter{}, 1, 10)
	require.NoError(t, listErr)
	assert.Equal(t, 0, total)
}

func TestCreateRequestSectorMismatch(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	_, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	otherID, _, _ := store.SeedAssignment(ctx, "Garden", "Tools", "Shovel")

	// The pairing exists, but not under the submitted sector.
	_, err := lifecycle.Create(ctx, models.CreateRequestPayload{
		CompanyName: "Acme Ltd",
		Email:       "buyer@acme.example",
		Phone:       "+90 555 000 0000",
		SectorID:    otherID,
		Products:    []models.RequestProduct{{ProductID: productID, ProductionGroupID: groupID}},
	})
	var validationErr *catalog.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	created, err := lifecycle.Create(ctx, models.CreateRequestPayload{
		CompanyName: "Acme Ltd",
		Email:       "buyer@acme.example",
		Phone:       "+90 555 000 0000",
		SectorID:    sectorID,
		Products:    []models.RequestProduct{{ProductID: productID, ProductionGroupID: groupID}},
	})
	require.NoError(t, err)

	updated, err := lifecycle.Transition(ctx, created.ID, models.StatusShipped, "sent via courier", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, models.StatusShipped, updated.StatusHistory[1].Status)
	assert.Equal(t, "sent via courier", updated.StatusHistory[1].Note)
	assert.Equal(t, "admin@example.com", updated.StatusHistory[1].UpdatedBy)

	// No reachability graph: moving back to pending is allowed and still
	// appends history.
	updated, err = lifecycle.Transition(ctx, created.ID, models.StatusPending, "correction", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Len(t, updated.StatusHistory, 3)
}

func TestTransitionUnknownStatus(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	_, err := lifecycle.Transition(ctx, "some-id", models.RequestStatus("lost"), "", "")
	assert.ErrorIs(t, err, request.ErrInvalidStatus)
}

func TestTransitionUnknownRequest(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	lifecycle := newLifecycle(store)

	_, err := lifecycle.Transition(ctx, "missing", models.StatusApproved, "", "")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestStatusValidity(t *testing.T) {
	for _, s := range []models.RequestStatus{
		models.StatusPending, models.StatusReview, models.StatusApproved,
		models.StatusPreparing, models.StatusShipped, models.StatusDelivered,
		models.StatusCompleted, models.StatusCancelled,
	} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, models.RequestStatus("unknown").IsValid())
	assert.True(t, models.StatusCompleted.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
	assert.False(t, models.StatusShipped.IsTerminal())
}

package request_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/db/dbtest"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/request"
)

func submit(t *testing.T, store *dbtest.MemStore, company, sectorID, groupID, productID string) models.Request {
	t.Helper()
	lifecycle := newLifecycle(store)
	created, err := lifecycle.Create(context.Background(), models.CreateRequestPayload{
		CompanyName: company,
		Email:       "buyer@" + company + ".example",
		Phone:       "+90 555 000 0000",
		SectorID:    sectorID,
		Products:    []models.RequestProduct{{ProductID: productID, ProductionGroupID: groupID}},
	})
	require.NoError(t, err)
	return created
}

func TestQueryPaginatedDefaults(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	svc := request.NewQueryService(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	for i := 0; i < 12; i++ {
		submit(t, store, fmt.Sprintf("Company-%02d", i), sectorID, groupID, productID)
	}

	page, err := svc.Query(ctx, request.QueryParams{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Customers, request.DefaultPageSize)
	assert.Equal(t, 12, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, request.DefaultPageSize, page.Pagination.Limit)

	// Newest first: the last submission leads page one.
	assert.Equal(t, "Company-11", page.Customers[0].CompanyName)
	assert.Equal(t, "Furniture", page.Customers[0].Sector)
	assert.Equal(t, "Hardware", page.Customers[0].ProductionGroups)
	assert.Equal(t, "Hinge", page.Customers[0].Products)

	page2, err := svc.Query(ctx, request.QueryParams{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Customers, 2)
	assert.Equal(t, 2, page2.Pagination.Page)
}

func TestQueryPageClamping(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	svc := request.NewQueryService(store)

	page, err := svc.Query(ctx, request.QueryParams{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Empty(t, page.Customers)
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	svc := request.NewQueryService(store)

	furnitureID, hardwareID, hingeID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	gardenID, toolsID, shovelID := store.SeedAssignment(ctx, "Garden", "Tools", "Shovel")

	submit(t, store, "WoodWorks", furnitureID, hardwareID, hingeID)
	submit(t, store, "GreenThumb", gardenID, toolsID, shovelID)

	page, err := svc.Query(ctx, request.QueryParams{SectorID: furnitureID})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "WoodWorks", page.Customers[0].CompanyName)

	// Group and product filters match against the embedded entries.
	page, err = svc.Query(ctx, request.QueryParams{ProductionGroupID: toolsID})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "GreenThumb", page.Customers[0].CompanyName)

	page, err = svc.Query(ctx, request.QueryParams{ProductID: hingeID})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "WoodWorks", page.Customers[0].CompanyName)

	// "all" disables the filter.
	page, err = svc.Query(ctx, request.QueryParams{SectorID: "all"})
	require.NoError(t, err)
	assert.Len(t, page.Customers, 2)
}

func TestQuerySearch(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	svc := request.NewQueryService(store)

	furnitureID, hardwareID, hingeID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	gardenID, toolsID, shovelID := store.SeedAssignment(ctx, "Garden", "Tools", "Shovel")

	submit(t, store, "WoodWorks", furnitureID, hardwareID, hingeID)
	submit(t, store, "GreenThumb", gardenID, toolsID, shovelID)

	// Case-insensitive, and resolved catalog names are searchable.
	page, err := svc.Query(ctx, request.QueryParams{Search: "HINGE"})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "WoodWorks", page.Customers[0].CompanyName)

	// Search mode is one unpaginated page.
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Equal(t, len(page.Customers), page.Pagination.Total)

	page, err = svc.Query(ctx, request.QueryParams{Search: "green"})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "GreenThumb", page.Customers[0].CompanyName)

	page, err = svc.Query(ctx, request.QueryParams{Search: "nomatch"})
	require.NoError(t, err)
	assert.Empty(t, page.Customers)
}

func TestQueryToleratesDeletedSector(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	svc := request.NewQueryService(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	submit(t, store, "WoodWorks", sectorID, groupID, productID)
	require.NoError(t, store.DeleteSector(ctx, sectorID))

	page, err := svc.Query(ctx, request.QueryParams{})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Empty(t, page.Customers[0].Sector)
	assert.Equal(t, "Hardware", page.Customers[0].ProductionGroups)
}

func TestListRequestsUnpaginatedTotal(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	for i := 0; i < 3; i++ {
		submit(t, store, fmt.Sprintf("Company-%d", i), sectorID, groupID, productID)
	}

	// limit <= 0 returns every match and derives the total from the result.
	rows, total, err := store.ListRequests(ctx, models.RequestFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, len(rows), total)
}

func TestQueryNameResolutionIsBatched(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	svc := request.NewQueryService(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	for i := 0; i < 8; i++ {
		submit(t, store, fmt.Sprintf("Company-%d", i), sectorID, groupID, productID)
	}

	// One list plus the three batch name lookups, regardless of row count.
	store.ResetCalls()
	_, err := svc.Query(ctx, request.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, store.TotalCalls())
	assert.Equal(t, 1, store.Calls["GetSectorsByIDs"])
	assert.Equal(t, 1, store.Calls["GetGroupsByIDs"])
	assert.Equal(t, 1, store.Calls["GetProductsByIDs"])
}

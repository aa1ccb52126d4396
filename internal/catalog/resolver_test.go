package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/catalog"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/db/dbtest"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

func TestResolveSectorOptions(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	sectorID, hardwareID, _ := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	store.SeedAssignment(ctx, "Furniture", "Hardware", "Bracket")
	store.SeedAssignment(ctx, "Furniture", "Seating", "Chair")

	options, err := resolver.Resolve(ctx, sectorID)
	require.NoError(t, err)

	assert.Equal(t, sectorID, options.SectorID)
	assert.Equal(t, "Furniture", options.SectorName)
	require.Len(t, options.Groups, 2)

	// Groups come back name-sorted, products name-sorted inside each group.
	assert.Equal(t, "Hardware", options.Groups[0].Name)
	assert.Equal(t, hardwareID, options.Groups[0].GroupID)
	require.Len(t, options.Groups[0].Products, 2)
	assert.Equal(t, "Bracket", options.Groups[0].Products[0].Name)
	assert.Equal(t, "Hinge", options.Groups[0].Products[1].Name)

	assert.Equal(t, "Seating", options.Groups[1].Name)
	require.Len(t, options.Groups[1].Products, 1)
	assert.Equal(t, "Chair", options.Groups[1].Products[0].Name)
}

func TestResolveAllSectors(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	store.SeedAssignment(ctx, "Garden", "Tools", "Shovel")

	options, err := resolver.Resolve(ctx, catalog.AllSectors)
	require.NoError(t, err)

	assert.Equal(t, catalog.AllSectors, options.SectorID)
	assert.Equal(t, "All sectors", options.SectorName)
	require.Len(t, options.Groups, 2)
	assert.Equal(t, "Hardware", options.Groups[0].Name)
	assert.Equal(t, "Tools", options.Groups[1].Name)
}

func TestResolveUnknownSectorIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	options, err := resolver.Resolve(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, options.Groups)
}

func TestResolveSectorWithoutGroups(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	sector, err := store.CreateSector(ctx, "Empty")
	require.NoError(t, err)

	options, err := resolver.Resolve(ctx, sector.ID)
	require.NoError(t, err)
	assert.Equal(t, "Empty", options.SectorName)
	assert.Empty(t, options.Groups)
}

func TestResolveGroupWithoutProducts(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	sector, err := store.CreateSector(ctx, "Furniture")
	require.NoError(t, err)
	_, err = store.CreateGroup(ctx, "Hardware", sector.ID)
	require.NoError(t, err)

	options, err := resolver.Resolve(ctx, sector.ID)
	require.NoError(t, err)
	require.Len(t, options.Groups, 1)
	assert.NotNil(t, options.Groups[0].Products)
	assert.Empty(t, options.Groups[0].Products)
}

func TestResolveDeduplicatesProductsPerGroup(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	// The same product under the same group name in two sectors: the "all"
	// view merges per group id, so each group still lists the product once.
	sectorA, err := store.CreateSector(ctx, "Furniture")
	require.NoError(t, err)
	sectorB, err := store.CreateSector(ctx, "Garden")
	require.NoError(t, err)
	group, err := store.CreateGroup(ctx, "Hardware", sectorA.ID)
	require.NoError(t, err)
	product, err := store.CreateProduct(ctx, models.Product{Name: "Hinge"})
	require.NoError(t, err)
	_, err = store.CreateAssignment(ctx, product.ID, group.ID, sectorA.ID)
	require.NoError(t, err)
	_, err = store.CreateAssignment(ctx, product.ID, group.ID, sectorB.ID)
	require.NoError(t, err)

	options, err := resolver.Resolve(ctx, catalog.AllSectors)
	require.NoError(t, err)
	require.Len(t, options.Groups, 1)
	assert.Len(t, options.Groups[0].Products, 1)
}

func TestResolveReadCountIndependentOfGroupCount(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	resolver := catalog.NewResolver(store)

	sectorID, _, _ := store.SeedAssignment(ctx, "Furniture", "G1", "P1")
	store.ResetCalls()
	_, err := resolver.Resolve(ctx, sectorID)
	require.NoError(t, err)
	smallCalls := store.TotalCalls()

	for _, g := range []string{"G2", "G3", "G4", "G5"} {
		store.SeedAssignment(ctx, "Furniture", g, "P-"+g)
	}
	store.ResetCalls()
	_, err = resolver.Resolve(ctx, sectorID)
	require.NoError(t, err)

	assert.Equal(t, smallCalls, store.TotalCalls(), "resolution cost must not grow with group count")

	store.ResetCalls()
	_, err = resolver.Resolve(ctx, catalog.AllSectors)
	require.NoError(t, err)
	assert.Equal(t, 3, store.TotalCalls(), "the all-sectors view is three batched reads")
}

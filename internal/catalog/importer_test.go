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

func sourceRows() []models.CatalogRow {
	return []models.CatalogRow{
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Hinge"},
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Bracket"},
		{SectorName: "Furniture", GroupName: "Seating", ProductName: "Chair"},
		{SectorName: "Garden", GroupName: "Tools", ProductName: "Shovel"},
	}
}

func TestImportCreatesHierarchy(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	importer := catalog.NewImporter(store)

	report, err := importer.ImportRows(ctx, sourceRows())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Sectors)
	assert.Equal(t, 3, report.Groups)
	assert.Equal(t, 4, report.Products)
	assert.Equal(t, 4, report.Assignments)
	assert.Equal(t, 0, report.RowsSkipped)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	importer := catalog.NewImporter(store)

	_, err := importer.ImportRows(ctx, sourceRows())
	require.NoError(t, err)

	// The second run over the same source finds everything and creates
	// nothing.
	report, err := importer.ImportRows(ctx, sourceRows())
	require.NoError(t, err)
	assert.Equal(t, models.ImportReport{}, report)

	assignments, err := store.ListAssignments(ctx, models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Len(t, assignments, 4)
}

func TestImportDuplicateRowsInOneRun(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	importer := catalog.NewImporter(store)

	rows := []models.CatalogRow{
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Hinge"},
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Hinge"},
	}
	report, err := importer.ImportRows(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sectors)
	assert.Equal(t, 1, report.Groups)
	assert.Equal(t, 1, report.Products)
	assert.Equal(t, 1, report.Assignments)

	assignments, err := store.ListAssignments(ctx, models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestImportReusesProductAcrossGroups(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	importer := catalog.NewImporter(store)

	rows := []models.CatalogRow{
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Hinge"},
		{SectorName: "Garden", GroupName: "Fittings", ProductName: "Hinge"},
	}
	report, err := importer.ImportRows(ctx, rows)
	require.NoError(t, err)

	// One product row, two assignment rows.
	assert.Equal(t, 1, report.Products)
	assert.Equal(t, 2, report.Assignments)
}

func TestImportSkipsIncompleteRows(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	importer := catalog.NewImporter(store)

	rows := []models.CatalogRow{
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Hinge"},
		{SectorName: "  ", GroupName: "Hardware", ProductName: "Hinge"},
		{SectorName: "Furniture", GroupName: "", ProductName: "Hinge"},
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: ""},
	}
	report, err := importer.ImportRows(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, 3, report.RowsSkipped)
	assert.Equal(t, 1, report.Assignments)
}

func TestImportTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	importer := catalog.NewImporter(store)

	rows := []models.CatalogRow{
		{SectorName: " Furniture ", GroupName: " Hardware ", ProductName: " Hinge "},
		{SectorName: "Furniture", GroupName: "Hardware", ProductName: "Hinge"},
	}
	report, err := importer.ImportRows(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sectors)
	assert.Equal(t, 1, report.Assignments)
}

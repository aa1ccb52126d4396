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

func TestValidateTriple(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	validator := catalog.NewValidator(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")

	valid, err := validator.Validate(ctx, productID, groupID, sectorID)
	require.NoError(t, err)
	assert.True(t, valid)

	// Empty sector checks the pairing only.
	valid, err = validator.Validate(ctx, productID, groupID, "")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = validator.Validate(ctx, productID, groupID, "other-sector")
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = validator.Validate(ctx, "nope", groupID, sectorID)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateProductsEmptyBatch(t *testing.T) {
	ctx := context.Background()
	validator := catalog.NewValidator(dbtest.NewMemStore())

	err := validator.ValidateProducts(ctx, nil, "")
	var validationErr *catalog.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Entries, 1)
	assert.Equal(t, "at least one product is required", validationErr.Entries[0].Reason)
}

func TestValidateProductsCollectsEveryOffender(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	validator := catalog.NewValidator(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")

	entries := []models.RequestProduct{
		{ProductID: productID, ProductionGroupID: groupID},
		{ProductID: "ghost-product", ProductionGroupID: groupID},
		{ProductID: productID, ProductionGroupID: ""},
	}
	err := validator.ValidateProducts(ctx, entries, sectorID)

	var validationErr *catalog.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Entries, 2)
	assert.Equal(t, 1, validationErr.Entries[0].Index)
	assert.Equal(t, 2, validationErr.Entries[1].Index)
}

func TestValidateProductsAllValid(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewMemStore()
	validator := catalog.NewValidator(store)

	sectorID, groupID, productID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Hinge")
	_, _, bracketID := store.SeedAssignment(ctx, "Furniture", "Hardware", "Bracket")

	entries := []models.RequestProduct{
		{ProductID: productID, ProductionGroupID: groupID},
		{ProductID: bracketID, ProductionGroupID: groupID},
	}
	assert.NoError(t, validator.ValidateProducts(ctx, entries, sectorID))
}

// Package catalog resolves, validates and imports the three-tier product
// catalog (sector, production group, product) connected through the
// assignment pivot.
package catalog

import (
	"context"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// Store is the slice of the persistent store the catalog engine needs. The
// pgx-backed db.Database satisfies it in production; tests use the in-memory
// store from db/dbtest.
type Store interface {
	GetSector(ctx context.Context, id string) (models.Sector, error)
	GetSectorByName(ctx context.Context, name string) (models.Sector, error)
	CreateSector(ctx context.Context, name string) (models.Sector, error)

	ListGroups(ctx context.Context, sectorID string) ([]models.ProductionGroup, error)
	GetGroupByNameAndSector(ctx context.Context, name, sectorID string) (models.ProductionGroup, error)
	CreateGroup(ctx context.Context, name, sectorID string) (models.ProductionGroup, error)

	GetProductByName(ctx context.Context, name string) (models.Product, error)
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)

	GetAssignmentsByGroupIDs(ctx context.Context, groupIDs []string) ([]models.ProductAssignment, error)
	CreateAssignment(ctx context.Context, productID, groupID, sectorID string) (models.ProductAssignment, error)
	HasAssignment(ctx context.Context, productID, groupID, sectorID string) (bool, error)
}

// AllSectors is the sentinel sector id that disables sector scoping.
const AllSectors = "all"

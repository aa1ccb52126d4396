package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/db"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/logging"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// Importer populates the catalog from rows of an external tabular source.
// The pipeline is idempotent: re-running it over the same (or a grown) source
// creates no duplicates, because every create either finds the existing row
// first or catches the uniqueness conflict.
type Importer struct {
	store Store
}

// NewImporter creates an import pipeline over the given store.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// ImportRows processes rows sequentially. A row missing any of its three
// fields is skipped; a row that fails mid-way is skipped and the run
// continues. Nothing is rolled back — a partially applied run is safe to
// re-execute. The report counts only newly created entities.
func (im *Importer) ImportRows(ctx context.Context, rows []models.CatalogRow) (models.ImportReport, error) {
	var report models.ImportReport

	for i, row := range rows {
		sectorName := strings.TrimSpace(row.SectorName)
		groupName := strings.TrimSpace(row.GroupName)
		productName := strings.TrimSpace(row.ProductName)
		if sectorName == "" || groupName == "" || productName == "" {
			report.RowsSkipped++
			continue
		}

		if err := im.importRow(ctx, sectorName, groupName, productName, &report); err != nil {
			logging.LogKV("warn", "import row skipped", map[string]interface{}{
				"row":     i,
				"sector":  sectorName,
				"group":   groupName,
				"product": productName,
				"error":   err.Error(),
			})
			report.RowsSkipped++
		}
	}
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, sectorName, groupName, productName string, report *models.ImportReport) error {
	sector, created, err := im.findOrCreateSector(ctx, sectorName)
	if err != nil {
		return err
	}
	if created {
		report.Sectors++
	}

	group, created, err := im.findOrCreateGroup(ctx, groupName, sector.ID)
	if err != nil {
		return err
	}
	if created {
		report.Groups++
	}

	product, created, err := im.findOrCreateProduct(ctx, productName)
	if err != nil {
		return err
	}
	if created {
		report.Products++
	}

	_, err = im.store.CreateAssignment(ctx, product.ID, group.ID, sector.ID)
	if errors.Is(err, db.ErrConflict) {
		// Triple already imported; nothing to do.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	report.Assignments++
	return nil
}

// findOrCreateSector resolves a sector by name, creating it when missing. A
// concurrent run may win the create; the loser re-fetches instead of failing.
func (im *Importer) findOrCreateSector(ctx context.Context, name string) (models.Sector, bool, error) {
	sector, err := im.store.GetSectorByName(ctx, name)
	if err == nil {
		return sector, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.Sector{}, false, fmt.Errorf("failed to look up sector: %w", err)
	}

	sector, err = im.store.CreateSector(ctx, name)
	if errors.Is(err, db.ErrConflict) {
		sector, err = im.store.GetSectorByName(ctx, name)
		if err != nil {
			return models.Sector{}, false, fmt.Errorf("failed to re-fetch sector after conflict: %w", err)
		}
		return sector, false, nil
	}
	if err != nil {
		return models.Sector{}, false, fmt.Errorf("failed to create sector: %w", err)
	}
	return sector, true, nil
}

func (im *Importer) findOrCreateGroup(ctx context.Context, name, sectorID string) (models.ProductionGroup, bool, error) {
	group, err := im.store.GetGroupByNameAndSector(ctx, name, sectorID)
	if err == nil {
		return group, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.ProductionGroup{}, false, fmt.Errorf("failed to look up group: %w", err)
	}

	group, err = im.store.CreateGroup(ctx, name, sectorID)
	if errors.Is(err, db.ErrConflict) {
		group, err = im.store.GetGroupByNameAndSector(ctx, name, sectorID)
		if err != nil {
			return models.ProductionGroup{}, false, fmt.Errorf("failed to re-fetch group after conflict: %w", err)
		}
		return group, false, nil
	}
	if err != nil {
		return models.ProductionGroup{}, false, fmt.Errorf("failed to create group: %w", err)
	}
	return group, true, nil
}

// findOrCreateProduct resolves a product by its globally unique name; a
// product seen once is reused wherever it reappears in later rows.
func (im *Importer) findOrCreateProduct(ctx context.Context, name string) (models.Product, bool, error) {
	product, err := im.store.GetProductByName(ctx, name)
	if err == nil {
		return product, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.Product{}, false, fmt.Errorf("failed to look up product: %w", err)
	}

	product, err = im.store.CreateProduct(ctx, models.Product{Name: name})
	if errors.Is(err, db.ErrConflict) {
		product, err = im.store.GetProductByName(ctx, name)
		if err != nil {
			return models.Product{}, false, fmt.Errorf("failed to re-fetch product after conflict: %w", err)
		}
		return product, false, nil
	}
	if err != nil {
		return models.Product{}, false, fmt.Errorf("failed to create product: %w", err)
	}
	return product, true, nil
}

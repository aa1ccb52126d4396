package catalog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// ParseWorkbook reads (sector, group, product) rows from the first sheet of
// an uploaded .xlsx workbook. The first row is treated as a header and
// skipped; short or blank rows are passed through and filtered by the
// importer's own skip rule.
func ParseWorkbook(r io.Reader) ([]models.CatalogRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	var out []models.CatalogRow
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		out = append(out, catalogRowFromCells(row))
	}
	return out, nil
}

func catalogRowFromCells(cells []string) models.CatalogRow {
	var row models.CatalogRow
	if len(cells) > 0 {
		row.SectorName = cells[0]
	}
	if len(cells) > 1 {
		row.GroupName = cells[1]
	}
	if len(cells) > 2 {
		row.ProductName = cells[2]
	}
	return row
}

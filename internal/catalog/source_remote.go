package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// RemoteSource fetches the catalog source as a published CSV export (three
// columns: sector, group, product) from a spreadsheet-like system over HTTP.
type RemoteSource struct {
	client *resty.Client
}

// NewRemoteSource creates a remote CSV source with sane timeout and retry
// settings.
func NewRemoteSource() *RemoteSource {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "text/csv")
	return &RemoteSource{client: client}
}

// Fetch downloads the CSV at url and parses its rows. Only total
// unavailability of the source is an error; malformed rows are left to the
// importer's skip rule.
func (s *RemoteSource) Fetch(ctx context.Context, url string) ([]models.CatalogRow, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog source: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog source returned status %d", resp.StatusCode())
	}
	return parseCSV(bytes.NewReader(resp.Body()))
}

func parseCSV(r io.Reader) ([]models.CatalogRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are fine, importer skips them

	var out []models.CatalogRow
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog CSV: %w", err)
		}
		if first {
			first = false
			continue // header row
		}
		out = append(out, catalogRowFromCells(record))
	}
	return out, nil
}

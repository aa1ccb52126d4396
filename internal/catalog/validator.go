package catalog

import (
	"context"
	"fmt"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// Validator answers whether a (product, group, sector) combination is a real
// catalog assignment. It gates both catalog mutation and request submission.
type Validator struct {
	store Store
}

// NewValidator creates an assignment validator over the given store.
func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// InvalidEntry names one request product entry with no matching assignment.
type InvalidEntry struct {
	Index             int    `json:"index"`
	ProductID         string `json:"product_id"`
	ProductionGroupID string `json:"production_group_id"`
	Reason            string `json:"reason"`
}

// ValidationError carries every offending entry of a rejected submission.
// The whole batch fails; there is no partial accept.
type ValidationError struct {
	Entries []InvalidEntry
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request validation failed: %d invalid product entries", len(e.Entries))
}

// Validate reports whether an assignment exists for the triple. An empty
// sectorID checks the product/group pairing only.
func (v *Validator) Validate(ctx context.Context, productID, groupID, sectorID string) (bool, error) {
	return v.store.HasAssignment(ctx, productID, groupID, sectorID)
}

// ValidateProducts checks every entry of a submission against the catalog.
// When sectorID is set, the matching assignment's sector must match too. It
// returns a ValidationError listing every unmatched entry, or nil when the
// whole batch is valid.
func (v *Validator) ValidateProducts(ctx context.Context, entries []models.RequestProduct, sectorID string) error {
	if len(entries) == 0 {
		return &ValidationError{Entries: []InvalidEntry{{
			Index:  0,
			Reason: "at least one product is required",
		}}}
	}

	var invalid []InvalidEntry
	for i, entry := range entries {
		if entry.ProductID == "" || entry.ProductionGroupID == "" {
			invalid = append(invalid, InvalidEntry{
				Index:             i,
				ProductID:         entry.ProductID,
				ProductionGroupID: entry.ProductionGroupID,
				Reason:            "product_id and production_group_id are required",
			})
			continue
		}
		ok, err := v.store.HasAssignment(ctx, entry.ProductID, entry.ProductionGroupID, sectorID)
		if err != nil {
			return fmt.Errorf("failed to check assignment: %w", err)
		}
		if !ok {
			invalid = append(invalid, InvalidEntry{
				Index:             i,
				ProductID:         entry.ProductID,
				ProductionGroupID: entry.ProductionGroupID,
				Reason:            "no matching catalog assignment",
			})
		}
	}

	if len(invalid) > 0 {
		return &ValidationError{Entries: invalid}
	}
	return nil
}

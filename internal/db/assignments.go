package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

const assignmentColumns = "id, product_id, production_group_id, sector_id, created_at"

func scanAssignment(row interface{ Scan(...any) error }) (models.ProductAssignment, error) {
	var a models.ProductAssignment
	err := row.Scan(&a.ID, &a.ProductID, &a.ProductionGroupID, &a.SectorID, &a.CreatedAt)
	return a, err
}

// CreateAssignment inserts one (product, group, sector) pivot row. A
// duplicate triple returns ErrConflict; the import pipeline relies on that to
// stay idempotent.
func (db *Database) CreateAssignment(ctx context.Context, productID, groupID, sectorID string) (models.ProductAssignment, error) {
	row := db.Pool.QueryRow(ctx, `
        INSERT INTO product_assignments (product_id, production_group_id, sector_id)
        VALUES ($1, $2, $3)
        RETURNING `+assignmentColumns,
		productID, groupID, sectorID)
	a, err := scanAssignment(row)
	if err != nil {
		return models.ProductAssignment{}, fmt.Errorf("failed to insert assignment: %w", mapWriteErr(err))
	}
	return a, nil
}

// HasAssignment reports whether a matching assignment row exists. An empty
// sectorID checks the product/group pairing only.
func (db *Database) HasAssignment(ctx context.Context, productID, groupID, sectorID string) (bool, error) {
	query := `SELECT EXISTS (
        SELECT 1 FROM product_assignments
        WHERE product_id = $1 AND production_group_id = $2)`
	args := []any{productID, groupID}
	if sectorID != "" {
		query = `SELECT EXISTS (
            SELECT 1 FROM product_assignments
            WHERE product_id = $1 AND production_group_id = $2 AND sector_id = $3)`
		args = append(args, sectorID)
	}

	var exists bool
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}

// GetAssignmentsByGroupIDs batch-fetches every assignment whose group is in
// the id set. This is the single round trip the options resolver leans on.
func (db *Database) GetAssignmentsByGroupIDs(ctx context.Context, groupIDs []string) ([]models.ProductAssignment, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		"SELECT "+assignmentColumns+" FROM product_assignments WHERE production_group_id = ANY($1)",
		groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.ProductAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListAssignments returns assignments matching the filter; empty filter
// fields are ignored.
func (db *Database) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ProductAssignment, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if filter.ProductID != "" {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argIndex))
		args = append(args, filter.ProductID)
		argIndex++
	}
	if filter.ProductionGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("production_group_id = $%d", argIndex))
		args = append(args, filter.ProductionGroupID)
		argIndex++
	}
	if filter.SectorID != "" {
		conditions = append(conditions, fmt.Sprintf("sector_id = $%d", argIndex))
		args = append(args, filter.SectorID)
	}

	query := "SELECT " + assignmentColumns + " FROM product_assignments"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.ProductAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// DeleteAssignment removes a pivot row by id.
func (db *Database) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM product_assignments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAssignmentByTriple removes the pivot row matching the exact triple.
func (db *Database) DeleteAssignmentByTriple(ctx context.Context, productID, groupID, sectorID string) error {
	tag, err := db.Pool.Exec(ctx, `
        DELETE FROM product_assignments
        WHERE product_id = $1 AND production_group_id = $2 AND sector_id = $3`,
		productID, groupID, sectorID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceProductAssignments swaps a product's assignment set for the given
// (sector, group) pairs in one transaction.
func (db *Database) ReplaceProductAssignments(ctx context.Context, productID string, pairs []models.AssignmentPair) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM product_assignments WHERE product_id = $1", productID); err != nil {
		return fmt.Errorf("failed to delete existing assignments: %w", err)
	}

	for _, pair := range pairs {
		_, err := tx.Exec(ctx, `
            INSERT INTO product_assignments (product_id, production_group_id, sector_id)
            VALUES ($1, $2, $3)`,
			productID, pair.ProductionGroupID, pair.SectorID)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", mapWriteErr(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ResetCatalog unconditionally wipes the four catalog collections in
// dependency order (assignments first, sectors last) and reports per-table
// deleted counts.
func (db *Database) ResetCatalog(ctx context.Context) (models.ResetCounts, error) {
	var counts models.ResetCounts

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	steps := []struct {
		table string
		out   *int
	}{
		{"product_assignments", &counts.Assignments},
		{"products", &counts.Products},
		{"production_groups", &counts.Groups},
		{"sectors", &counts.Sectors},
	}
	for _, step := range steps {
		tag, err := tx.Exec(ctx, "DELETE FROM "+step.table)
		if err != nil {
			return models.ResetCounts{}, fmt.Errorf("failed to reset %s: %w", step.table, err)
		}
		*step.out = int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return models.ResetCounts{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return counts, nil
}

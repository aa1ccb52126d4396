package db

import (
	"context"
	"fmt"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

const groupColumns = "id, name, sector_id, created_at, updated_at"

func scanGroup(row interface{ Scan(...any) error }) (models.ProductionGroup, error) {
	var g models.ProductionGroup
	err := row.Scan(&g.ID, &g.Name, &g.SectorID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// CreateGroup inserts a production group. (name, sector_id) is unique;
// duplicates come back as ErrConflict.
func (db *Database) CreateGroup(ctx context.Context, name, sectorID string) (models.ProductionGroup, error) {
	row := db.Pool.QueryRow(ctx,
		"INSERT INTO production_groups (name, sector_id) VALUES ($1, $2) RETURNING "+groupColumns,
		name, sectorID)
	g, err := scanGroup(row)
	if err != nil {
		return models.ProductionGroup{}, fmt.Errorf("failed to insert production group: %w", mapWriteErr(err))
	}
	return g, nil
}

// GetGroup fetches one production group by id.
func (db *Database) GetGroup(ctx context.Context, id string) (models.ProductionGroup, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+groupColumns+" FROM production_groups WHERE id = $1", id)
	g, err := scanGroup(row)
	if err != nil {
		return models.ProductionGroup{}, mapReadErr(err)
	}
	return g, nil
}

// GetGroupByNameAndSector fetches the group owning (name, sectorID).
func (db *Database) GetGroupByNameAndSector(ctx context.Context, name, sectorID string) (models.ProductionGroup, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+groupColumns+" FROM production_groups WHERE name = $1 AND sector_id = $2",
		name, sectorID)
	g, err := scanGroup(row)
	if err != nil {
		return models.ProductionGroup{}, mapReadErr(err)
	}
	return g, nil
}

// GetGroupsByIDs batch-fetches production groups for an id set.
func (db *Database) GetGroupsByIDs(ctx context.Context, ids []string) ([]models.ProductionGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		"SELECT "+groupColumns+" FROM production_groups WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query production groups: %w", err)
	}
	defer rows.Close()

	var groups []models.ProductionGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan production group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ListGroups returns production groups sorted by name. An empty sectorID
// means all sectors.
func (db *Database) ListGroups(ctx context.Context, sectorID string) ([]models.ProductionGroup, error) {
	query := "SELECT " + groupColumns + " FROM production_groups ORDER BY name"
	args := []any{}
	if sectorID != "" {
		query = "SELECT " + groupColumns + " FROM production_groups WHERE sector_id = $1 ORDER BY name"
		args = append(args, sectorID)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query production groups: %w", err)
	}
	defer rows.Close()

	var groups []models.ProductionGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan production group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// UpdateGroup renames a group and/or moves it to another sector.
func (db *Database) UpdateGroup(ctx context.Context, id, name, sectorID string) (models.ProductionGroup, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE production_groups
        SET name = $2, sector_id = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING `+groupColumns, id, name, sectorID)
	g, err := scanGroup(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ProductionGroup{}, ErrConflict
		}
		return models.ProductionGroup{}, mapReadErr(err)
	}
	return g, nil
}

// DeleteGroup removes a production group without touching assignments that
// reference it.
func (db *Database) DeleteGroup(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM production_groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete production group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

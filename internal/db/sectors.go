package db

import (
	"context"
	"fmt"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

const sectorColumns = "id, name, created_at, updated_at"

func scanSector(row interface{ Scan(...any) error }) (models.Sector, error) {
	var s models.Sector
	err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateSector inserts a new sector. Returns ErrConflict when the name is
// already taken.
func (db *Database) CreateSector(ctx context.Context, name string) (models.Sector, error) {
	row := db.Pool.QueryRow(ctx,
		"INSERT INTO sectors (name) VALUES ($1) RETURNING "+sectorColumns, name)
	s, err := scanSector(row)
	if err != nil {
		return models.Sector{}, fmt.Errorf("failed to insert sector: %w", mapWriteErr(err))
	}
	return s, nil
}

// GetSector fetches one sector by id.
func (db *Database) GetSector(ctx context.Context, id string) (models.Sector, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+sectorColumns+" FROM sectors WHERE id = $1", id)
	s, err := scanSector(row)
	if err != nil {
		return models.Sector{}, mapReadErr(err)
	}
	return s, nil
}

// GetSectorByName fetches one sector by its unique name.
func (db *Database) GetSectorByName(ctx context.Context, name string) (models.Sector, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+sectorColumns+" FROM sectors WHERE name = $1", name)
	s, err := scanSector(row)
	if err != nil {
		return models.Sector{}, mapReadErr(err)
	}
	return s, nil
}

// GetSectorsByIDs batch-fetches sectors for an id set. Missing ids are simply
// absent from the result.
func (db *Database) GetSectorsByIDs(ctx context.Context, ids []string) ([]models.Sector, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		"SELECT "+sectorColumns+" FROM sectors WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	var sectors []models.Sector
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

// ListSectors returns every sector, newest first.
func (db *Database) ListSectors(ctx context.Context) ([]models.Sector, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+sectorColumns+" FROM sectors ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	var sectors []models.Sector
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

// UpdateSector renames a sector.
func (db *Database) UpdateSector(ctx context.Context, id, name string) (models.Sector, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE sectors
        SET name = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING `+sectorColumns, id, name)
	s, err := scanSector(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Sector{}, ErrConflict
		}
		return models.Sector{}, mapReadErr(err)
	}
	return s, nil
}

// DeleteSector removes a sector. Groups and assignments referencing it are
// left in place; readers treat the dangling reference as "name unknown".
func (db *Database) DeleteSector(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM sectors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete sector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

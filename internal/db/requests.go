package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

const requestColumns = "id, company_name, first_name, last_name, email, phone, address, sector_id, status, created_at, updated_at"

func scanRequest(row interface{ Scan(...any) error }) (models.Request, error) {
	var r models.Request
	err := row.Scan(&r.ID, &r.CompanyName, &r.FirstName, &r.LastName, &r.Email,
		&r.Phone, &r.Address, &r.SectorID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// CreateRequest persists a validated request together with its product
// entries and the first status history row, atomically.
func (db *Database) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
        INSERT INTO requests (company_name, first_name, last_name, email, phone, address, sector_id, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+requestColumns,
		req.CompanyName, req.FirstName, req.LastName, req.Email, req.Phone,
		req.Address, req.SectorID, req.Status)
	created, err := scanRequest(row)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to insert request: %w", err)
	}

	for _, p := range req.Products {
		_, err := tx.Exec(ctx, `
            INSERT INTO request_products (request_id, product_id, production_group_id)
            VALUES ($1, $2, $3)`,
			created.ID, p.ProductID, p.ProductionGroupID)
		if err != nil {
			return models.Request{}, fmt.Errorf("failed to insert request product: %w", err)
		}
	}

	for _, entry := range req.StatusHistory {
		_, err := tx.Exec(ctx, `
            INSERT INTO request_status_history (request_id, status, note, updated_by)
            VALUES ($1, $2, $3, $4)`,
			created.ID, entry.Status, entry.Note, entry.UpdatedBy)
		if err != nil {
			return models.Request{}, fmt.Errorf("failed to insert status history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Request{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	created.Products = req.Products
	created.ProductionGroupIDs = req.ProductionGroupIDs
	created.StatusHistory = req.StatusHistory
	return created, nil
}

// GetRequest fetches one request with its products and full status history.
func (db *Database) GetRequest(ctx context.Context, id string) (models.Request, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id = $1", id)
	req, err := scanRequest(row)
	if err != nil {
		return models.Request{}, mapReadErr(err)
	}

	loaded, err := db.attachRequestDetails(ctx, []models.Request{req})
	if err != nil {
		return models.Request{}, err
	}
	return loaded[0], nil
}

// AppendRequestStatus sets the request's status and appends one history
// entry, atomically. Returns ErrNotFound for an unknown id.
func (db *Database) AppendRequestStatus(ctx context.Context, id string, entry models.StatusHistoryEntry) (models.Request, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE requests SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1",
		id, entry.Status)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Request{}, ErrNotFound
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO request_status_history (request_id, status, note, updated_by)
        VALUES ($1, $2, $3, $4)`,
		id, entry.Status, entry.Note, entry.UpdatedBy)
	if err != nil {
		return models.Request{}, fmt.Errorf("failed to insert status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Request{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return db.GetRequest(ctx, id)
}

// ListRequests returns requests matching the filter, newest first, plus the
// total matching count. limit <= 0 disables pagination, returns every match
// and derives the total from the result instead of running a separate count
// (search mode). Group/product filters match the embedded product
// entries, not a join against the catalog.
func (db *Database) ListRequests(ctx context.Context, filter models.RequestFilter, page, limit int) ([]models.Request, int, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if filter.SectorID != "" {
		conditions = append(conditions, fmt.Sprintf("r.sector_id = $%d", argIndex))
		args = append(args, filter.SectorID)
		argIndex++
	}
	if filter.ProductionGroupID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM request_products rp WHERE rp.request_id = r.id AND rp.production_group_id = $%d)", argIndex))
		args = append(args, filter.ProductionGroupID)
		argIndex++
	}
	if filter.ProductID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM request_products rp WHERE rp.request_id = r.id AND rp.product_id = $%d)", argIndex))
		args = append(args, filter.ProductID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Unpaginated mode fetches every match anyway, so the count query would
	// be wasted.
	var total int
	if limit > 0 {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM requests r %s", whereClause)
		if err := db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count requests: %w", err)
		}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM requests r %s ORDER BY r.created_at DESC",
		requestColumns, whereClause)
	if limit > 0 {
		offset := (page - 1) * limit
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, limit, offset)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating requests: %w", err)
	}

	if limit <= 0 {
		total = len(requests)
	}

	requests, err = db.attachRequestDetails(ctx, requests)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// attachRequestDetails loads products and status history for a request set
// with one batched query per table.
func (db *Database) attachRequestDetails(ctx context.Context, requests []models.Request) ([]models.Request, error) {
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]string, 0, len(requests))
	index := make(map[string]int, len(requests))
	for i, r := range requests {
		ids = append(ids, r.ID)
		index[r.ID] = i
	}

	rows, err := db.Pool.Query(ctx, `
        SELECT request_id, product_id, production_group_id
        FROM request_products
        WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query request products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var requestID string
		var p models.RequestProduct
		if err := rows.Scan(&requestID, &p.ProductID, &p.ProductionGroupID); err != nil {
			return nil, fmt.Errorf("failed to scan request product: %w", err)
		}
		i := index[requestID]
		requests[i].Products = append(requests[i].Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request products: %w", err)
	}

	histRows, err := db.Pool.Query(ctx, `
        SELECT request_id, status, note, updated_by, created_at
        FROM request_status_history
        WHERE request_id = ANY($1)
        ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer histRows.Close()

	for histRows.Next() {
		var requestID string
		var entry models.StatusHistoryEntry
		if err := histRows.Scan(&requestID, &entry.Status, &entry.Note, &entry.UpdatedBy, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		i := index[requestID]
		requests[i].StatusHistory = append(requests[i].StatusHistory, entry)
	}
	if err := histRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	// Derive the denormalized group-id list from the product entries.
	for i := range requests {
		seen := make(map[string]bool)
		for _, p := range requests[i].Products {
			if !seen[p.ProductionGroupID] {
				seen[p.ProductionGroupID] = true
				requests[i].ProductionGroupIDs = append(requests[i].ProductionGroupIDs, p.ProductionGroupID)
			}
		}
	}
	return requests, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

const productColumns = "id, name, slug, description, image_url, created_at, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateProduct inserts a product. The slug is derived from the name when the
// caller leaves it empty. Duplicate names (or slugs) return ErrConflict.
func (db *Database) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	row := db.Pool.QueryRow(ctx, `
        INSERT INTO products (name, slug, description, image_url)
        VALUES ($1, $2, $3, $4)
        RETURNING `+productColumns,
		product.Name, product.Slug, product.Description, product.ImageURL)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", mapWriteErr(err))
	}
	return p, nil
}

// CreateProductWithAssignments inserts a product and its assignment rows in
// one transaction. A failing assignment insert rolls back the product, so no
// assignment-less product is left behind.
func (db *Database) CreateProductWithAssignments(ctx context.Context, product models.Product, pairs []models.AssignmentPair) (models.Product, error) {
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
        INSERT INTO products (name, slug, description, image_url)
        VALUES ($1, $2, $3, $4)
        RETURNING `+productColumns,
		product.Name, product.Slug, product.Description, product.ImageURL)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", mapWriteErr(err))
	}

	for _, pair := range pairs {
		_, err := tx.Exec(ctx, `
            INSERT INTO product_assignments (product_id, production_group_id, sector_id)
            VALUES ($1, $2, $3)`,
			p.ID, pair.ProductionGroupID, pair.SectorID)
		if err != nil {
			return models.Product{}, fmt.Errorf("failed to insert assignment: %w", mapWriteErr(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Product{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, nil
}

// GetProduct fetches one product by id.
func (db *Database) GetProduct(ctx context.Context, id string) (models.Product, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, mapReadErr(err)
	}
	return p, nil
}

// GetProductByName fetches one product by its unique name.
func (db *Database) GetProductByName(ctx context.Context, name string) (models.Product, error) {
	row := db.Pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE name = $1", name)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, mapReadErr(err)
	}
	return p, nil
}

// GetProductsByIDs batch-fetches products for an id set, sorted by name.
// Missing ids are simply absent from the result.
func (db *Database) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ANY($1) ORDER BY name", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SearchProductsByName returns up to limit products whose name contains the
// query, case-insensitively, sorted by name.
func (db *Database) SearchProductsByName(ctx context.Context, query string, limit int) ([]models.Product, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT $2",
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProducts returns every product sorted by name.
func (db *Database) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct updates a product's fields.
func (db *Database) UpdateProduct(ctx context.Context, id string, product models.Product) (models.Product, error) {
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	row := db.Pool.QueryRow(ctx, `
        UPDATE products
        SET name = $2, slug = $3, description = $4, image_url = $5, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING `+productColumns,
		id, product.Name, product.Slug, product.Description, product.ImageURL)
	p, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Product{}, ErrConflict
		}
		return models.Product{}, mapReadErr(err)
	}
	return p, nil
}

// DeleteProduct removes a product and cascades to its assignment rows,
// reporting how many were deleted.
func (db *Database) DeleteProduct(ctx context.Context, id string) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "DELETE FROM product_assignments WHERE product_id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product assignments: %w", err)
	}
	deleted := int(tag.RowsAffected())

	res, err := tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}
	if res.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deleted, nil
}

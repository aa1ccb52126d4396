package models

import (
	"regexp"
	"strings"
	"time"
)

// Sector is the top-level catalog category.
type Sector struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductionGroup is a sub-category owned by exactly one sector.
// (name, sector_id) is unique; the same group name may repeat across sectors.
type ProductionGroup struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SectorID  string    `json:"sector_id" db:"sector_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product is sector/group independent; it appears under a group only through
// a ProductAssignment row.
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

var slugCleaner = regexp.MustCompile(`[^\w-]+`)

// Slugify derives a URL slug from a product name: lowercase, spaces to
// dashes, everything outside [a-z0-9_-] stripped.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	return slugCleaner.ReplaceAllString(s, "")
}

// ProductAssignment is the pivot linking one product to one production group
// within one sector. The (product, group, sector) triple is unique and is the
// sole source of truth for which products appear where.
type ProductAssignment struct {
	ID                string    `json:"id" db:"id"`
	ProductID         string    `json:"product_id" db:"product_id"`
	ProductionGroupID string    `json:"production_group_id" db:"production_group_id"`
	SectorID          string    `json:"sector_id" db:"sector_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// AssignmentView is an assignment with its foreign keys resolved to display
// names. A dangling reference resolves to an empty name, not an error.
type AssignmentView struct {
	ID                  string `json:"id"`
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	ProductionGroupID   string `json:"production_group_id"`
	ProductionGroupName string `json:"production_group_name"`
	SectorID            string `json:"sector_id"`
	SectorName          string `json:"sector_name"`
}

// AssignmentFilter narrows assignment listings; empty fields are ignored.
type AssignmentFilter struct {
	ProductID         string
	ProductionGroupID string
	SectorID          string
}

// AssignmentPair is a (sector, group) target used when creating or replacing
// a product's assignments.
type AssignmentPair struct {
	SectorID          string `json:"sector_id" binding:"required"`
	ProductionGroupID string `json:"production_group_id" binding:"required"`
}

// GroupOptions is one entry of the resolved options tree: a production group
// with the deduplicated, name-sorted products assigned to it.
type GroupOptions struct {
	GroupID  string          `json:"group_id"`
	Name     string          `json:"name"`
	Products []ProductOption `json:"products"`
}

// ProductOption is a product reduced to what the request form needs.
type ProductOption struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
}

// SectorOptions is the full options tree for one sector (or the "all"
// sentinel, in which case SectorID is "all").
type SectorOptions struct {
	SectorID   string         `json:"sector_id"`
	SectorName string         `json:"sector_name"`
	Groups     []GroupOptions `json:"groups"`
}

// CatalogRow is one row of the external tabular import source.
type CatalogRow struct {
	SectorName  string `json:"sector_name"`
	GroupName   string `json:"group_name"`
	ProductName string `json:"product_name"`
}

// ImportReport counts entities newly created by one import run. Rows that
// matched pre-existing entities are not counted, so a re-run over the same
// source reports all zeros.
type ImportReport struct {
	Sectors     int `json:"sectors"`
	Groups      int `json:"groups"`
	Products    int `json:"products"`
	Assignments int `json:"assignments"`
	RowsSkipped int `json:"rows_skipped"`
}

// ResetCounts reports how many rows a catalog reset removed per collection.
type ResetCounts struct {
	Assignments int `json:"assignments"`
	Products    int `json:"products"`
	Groups      int `json:"groups"`
	Sectors     int `json:"sectors"`
}

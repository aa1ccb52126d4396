package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/db"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// Resolver turns a sector selection into the nested group/product tree the
// request form renders from.
type Resolver struct {
	store Store
}

// NewResolver creates an options resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns every production group of the sector (or of all sectors for
// the AllSectors sentinel) with the distinct products assigned to each group,
// both levels sorted by name.
//
// The whole resolution costs at most three batched reads no matter how many
// groups there are: one for the groups, one for their assignments, one for
// the referenced products. An unknown sector, a sector without groups, or a
// group without products all yield empty lists, never an error.
func (r *Resolver) Resolve(ctx context.Context, sectorID string) (models.SectorOptions, error) {
	options := models.SectorOptions{
		SectorID:   sectorID,
		SectorName: "All sectors",
		Groups:     []models.GroupOptions{},
	}

	var groups []models.ProductionGroup
	if sectorID == AllSectors {
		all, err := r.store.ListGroups(ctx, "")
		if err != nil {
			return models.SectorOptions{}, fmt.Errorf("failed to list groups: %w", err)
		}
		groups = all
	} else {
		sector, err := r.store.GetSector(ctx, sectorID)
		if errors.Is(err, db.ErrNotFound) {
			return options, nil
		}
		if err != nil {
			return models.SectorOptions{}, fmt.Errorf("failed to load sector: %w", err)
		}
		options.SectorName = sector.Name

		groups, err = r.store.ListGroups(ctx, sectorID)
		if err != nil {
			return models.SectorOptions{}, fmt.Errorf("failed to list groups: %w", err)
		}
	}
	if len(groups) == 0 {
		return options, nil
	}

	groupIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	assignments, err := r.store.GetAssignmentsByGroupIDs(ctx, groupIDs)
	if err != nil {
		return models.SectorOptions{}, fmt.Errorf("failed to load assignments: %w", err)
	}

	productIDSet := make(map[string]bool)
	var productIDs []string
	for _, a := range assignments {
		if !productIDSet[a.ProductID] {
			productIDSet[a.ProductID] = true
			productIDs = append(productIDs, a.ProductID)
		}
	}

	products, err := r.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return models.SectorOptions{}, fmt.Errorf("failed to load products: %w", err)
	}

	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	// With the "all" sentinel the same product/group pair can show up under
	// several sectors; the per-group set keeps each product once.
	groupProducts := make(map[string][]models.ProductOption)
	groupSeen := make(map[string]map[string]bool)
	for _, a := range assignments {
		product, ok := productByID[a.ProductID]
		if !ok {
			// Dangling product reference; reader tolerates it.
			continue
		}
		if groupSeen[a.ProductionGroupID] == nil {
			groupSeen[a.ProductionGroupID] = make(map[string]bool)
		}
		if groupSeen[a.ProductionGroupID][a.ProductID] {
			continue
		}
		groupSeen[a.ProductionGroupID][a.ProductID] = true
		groupProducts[a.ProductionGroupID] = append(groupProducts[a.ProductionGroupID], models.ProductOption{
			ProductID: product.ID,
			Name:      product.Name,
		})
	}

	for _, g := range groups {
		opts := groupProducts[g.ID]
		if opts == nil {
			opts = []models.ProductOption{}
		}
		sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
		options.Groups = append(options.Groups, models.GroupOptions{
			GroupID:  g.ID,
			Name:     g.Name,
			Products: opts,
		})
	}
	return options, nil
}

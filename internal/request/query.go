package request

import (
	"context"
	"fmt"
	"strings"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// DefaultPageSize is the page size of the paginated customer listing.
const DefaultPageSize = 10

// QueryParams selects and narrows the admin customer listing. A present
// Search term switches to search mode, which returns every match as one
// unpaginated page.
type QueryParams struct {
	Page              int
	Search            string
	SectorID          string
	ProductionGroupID string
	ProductID         string
}

// QueryService builds filtered, paginated, searchable views over requests
// joined against catalog names.
type QueryService struct {
	store Store
}

// NewQueryService creates a customer query service.
func NewQueryService(store Store) *QueryService {
	return &QueryService{store: store}
}

// Query runs either the paginated or the search listing. Rows come back
// flattened: sector, group and product ids resolved to display names, with a
// dangling reference resolving to an empty name rather than an error.
func (s *QueryService) Query(ctx context.Context, params QueryParams) (models.CustomerPage, error) {
	filter := models.RequestFilter{
		SectorID:          normalizeFilter(params.SectorID),
		ProductionGroupID: normalizeFilter(params.ProductionGroupID),
		ProductID:         normalizeFilter(params.ProductID),
	}

	search := strings.TrimSpace(params.Search)
	if search == "" {
		return s.paginated(ctx, filter, params.Page)
	}
	return s.search(ctx, filter, search)
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "all" {
		return ""
	}
	return v
}

func (s *QueryService) paginated(ctx context.Context, filter models.RequestFilter, page int) (models.CustomerPage, error) {
	if page < 1 {
		page = 1
	}

	requests, total, err := s.store.ListRequests(ctx, filter, page, DefaultPageSize)
	if err != nil {
		return models.CustomerPage{}, fmt.Errorf("failed to list requests: %w", err)
	}

	rows, err := s.flatten(ctx, requests)
	if err != nil {
		return models.CustomerPage{}, err
	}

	totalPages := (total + DefaultPageSize - 1) / DefaultPageSize
	return models.CustomerPage{
		Customers: rows,
		Pagination: models.Pagination{
			Total:      total,
			Page:       page,
			Limit:      DefaultPageSize,
			TotalPages: totalPages,
		},
	}, nil
}

// search fetches every filter match, resolves names for the whole candidate
// set in one batched pre-pass, then keeps rows whose concatenated textual
// fields contain the term case-insensitively.
func (s *QueryService) search(ctx context.Context, filter models.RequestFilter, term string) (models.CustomerPage, error) {
	requests, _, err := s.store.ListRequests(ctx, filter, 0, 0)
	if err != nil {
		return models.CustomerPage{}, fmt.Errorf("failed to list requests: %w", err)
	}

	rows, err := s.flatten(ctx, requests)
	if err != nil {
		return models.CustomerPage{}, err
	}

	needle := strings.ToLower(term)
	matched := make([]models.CustomerRow, 0, len(rows))
	for _, row := range rows {
		combined := strings.ToLower(strings.Join([]string{
			row.CompanyName,
			row.FirstName,
			row.LastName,
			row.Email,
			row.Phone,
			row.Address,
			row.Sector,
			row.ProductionGroups,
			row.Products,
		}, " "))
		if strings.Contains(combined, needle) {
			matched = append(matched, row)
		}
	}

	return models.CustomerPage{
		Customers: matched,
		Pagination: models.Pagination{
			Total:      len(matched),
			Page:       1,
			Limit:      len(matched),
			TotalPages: 1,
		},
	}, nil
}

// flatten resolves catalog names for a request set with exactly three batch
// reads across all rows, never one resolution per row.
func (s *QueryService) flatten(ctx context.Context, requests []models.Request) ([]models.CustomerRow, error) {
	sectorIDs := make(map[string]bool)
	groupIDs := make(map[string]bool)
	productIDs := make(map[string]bool)
	for _, req := range requests {
		if req.SectorID != nil {
			sectorIDs[*req.SectorID] = true
		}
		for _, p := range req.Products {
			groupIDs[p.ProductionGroupID] = true
			productIDs[p.ProductID] = true
		}
	}

	sectors, err := s.store.GetSectorsByIDs(ctx, keys(sectorIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sectors: %w", err)
	}
	groups, err := s.store.GetGroupsByIDs(ctx, keys(groupIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve groups: %w", err)
	}
	products, err := s.store.GetProductsByIDs(ctx, keys(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	sectorName := make(map[string]string, len(sectors))
	for _, sec := range sectors {
		sectorName[sec.ID] = sec.Name
	}
	groupName := make(map[string]string, len(groups))
	for _, g := range groups {
		groupName[g.ID] = g.Name
	}
	productName := make(map[string]string, len(products))
	for _, p := range products {
		productName[p.ID] = p.Name
	}

	rows := make([]models.CustomerRow, 0, len(requests))
	for _, req := range requests {
		row := models.CustomerRow{
			ID:          req.ID,
			CompanyName: req.CompanyName,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Status:      req.Status,
			CreatedAt:   req.CreatedAt,
		}
		if req.SectorID != nil {
			// Deleted sectors resolve to an empty name.
			row.Sector = sectorName[*req.SectorID]
		}

		var groupNames, productNames []string
		seenGroups := make(map[string]bool)
		for _, p := range req.Products {
			if name, ok := groupName[p.ProductionGroupID]; ok && !seenGroups[p.ProductionGroupID] {
				seenGroups[p.ProductionGroupID] = true
				groupNames = append(groupNames, name)
			}
			if name, ok := productName[p.ProductID]; ok {
				productNames = append(productNames, name)
			}
		}
		row.ProductionGroups = strings.Join(groupNames, ", ")
		row.Products = strings.Join(productNames, ", ")

		rows = append(rows, row)
	}
	return rows, nil
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// Package dbtest provides an in-memory store with the same contract as the
// pgx-backed db.Database: typed ErrNotFound/ErrConflict, the uniqueness
// indexes, cascade-on-product-delete, and the batch read methods. Service
// tests run against it without a database; it also counts method calls so
// batching guarantees can be asserted.
package dbtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/db"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// MemStore is a mutex-guarded in-memory implementation of the store contract.
type MemStore struct {
	mu sync.Mutex

	sectors     map[string]models.Sector
	groups      map[string]models.ProductionGroup
	products    map[string]models.Product
	assignments map[string]models.ProductAssignment
	requests    map[string]models.Request

	// Calls counts store method invocations by name, for round-trip
	// assertions in tests.
	Calls map[string]int

	seq  int
	base time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sectors:     make(map[string]models.Sector),
		groups:      make(map[string]models.ProductionGroup),
		products:    make(map[string]models.Product),
		assignments: make(map[string]models.ProductAssignment),
		requests:    make(map[string]models.Request),
		Calls:       make(map[string]int),
		base:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// ResetCalls zeroes the per-method call counters.
func (m *MemStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make(map[string]int)
}

// TotalCalls sums every counted store call.
func (m *MemStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

// next returns a fresh id and a strictly increasing timestamp.
func (m *MemStore) next() (string, time.Time) {
	m.seq++
	return uuid.NewString(), m.base.Add(time.Duration(m.seq) * time.Millisecond)
}

func (m *MemStore) count(method string) {
	m.Calls[method]++
}

// Health always succeeds.
func (m *MemStore) Health(ctx context.Context) error { return nil }

// ---- Sectors ----

func (m *MemStore) CreateSector(ctx context.Context, name string) (models.Sector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("CreateSector")

	for _, s := range m.sectors {
		if s.Name == name {
			return models.Sector{}, db.ErrConflict
		}
	}
	id, ts := m.next()
	sector := models.Sector{ID: id, Name: name, CreatedAt: ts, UpdatedAt: ts}
	m.sectors[id] = sector
	return sector, nil
}

func (m *MemStore) GetSector(ctx context.Context, id string) (models.Sector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetSector")

	sector, ok := m.sectors[id]
	if !ok {
		return models.Sector{}, db.ErrNotFound
	}
	return sector, nil
}

func (m *MemStore) GetSectorByName(ctx context.Context, name string) (models.Sector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetSectorByName")

	for _, s := range m.sectors {
		if s.Name == name {
			return s, nil
		}
	}
	return models.Sector{}, db.ErrNotFound
}

func (m *MemStore) GetSectorsByIDs(ctx context.Context, ids []string) ([]models.Sector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetSectorsByIDs")

	var out []models.Sector
	for _, id := range ids {
		if s, ok := m.sectors[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemStore) ListSectors(ctx context.Context) ([]models.Sector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ListSectors")

	out := make([]models.Sector, 0, len(m.sectors))
	for _, s := range m.sectors {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) UpdateSector(ctx context.Context, id, name string) (models.Sector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("UpdateSector")

	sector, ok := m.sectors[id]
	if !ok {
		return models.Sector{}, db.ErrNotFound
	}
	for otherID, s := range m.sectors {
		if otherID != id && s.Name == name {
			return models.Sector{}, db.ErrConflict
		}
	}
	sector.Name = name
	sector.UpdatedAt = time.Now().UTC()
	m.sectors[id] = sector
	return sector, nil
}

func (m *MemStore) DeleteSector(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("DeleteSector")

	if _, ok := m.sectors[id]; !ok {
		return db.ErrNotFound
	}
	// No cascade: groups and assignments keep their dangling sector ids.
	delete(m.sectors, id)
	return nil
}

// ---- Production groups ----

func (m *MemStore) CreateGroup(ctx context.Context, name, sectorID string) (models.ProductionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("CreateGroup")

	for _, g := range m.groups {
		if g.Name == name && g.SectorID == sectorID {
			return models.ProductionGroup{}, db.ErrConflict
		}
	}
	id, ts := m.next()
	group := models.ProductionGroup{ID: id, Name: name, SectorID: sectorID, CreatedAt: ts, UpdatedAt: ts}
	m.groups[id] = group
	return group, nil
}

func (m *MemStore) GetGroup(ctx context.Context, id string) (models.ProductionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetGroup")

	group, ok := m.groups[id]
	if !ok {
		return models.ProductionGroup{}, db.ErrNotFound
	}
	return group, nil
}

func (m *MemStore) GetGroupByNameAndSector(ctx context.Context, name, sectorID string) (models.ProductionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetGroupByNameAndSector")

	for _, g := range m.groups {
		if g.Name == name && g.SectorID == sectorID {
			return g, nil
		}
	}
	return models.ProductionGroup{}, db.ErrNotFound
}

func (m *MemStore) GetGroupsByIDs(ctx context.Context, ids []string) ([]models.ProductionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetGroupsByIDs")

	var out []models.ProductionGroup
	for _, id := range ids {
		if g, ok := m.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemStore) ListGroups(ctx context.Context, sectorID string) ([]models.ProductionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ListGroups")

	var out []models.ProductionGroup
	for _, g := range m.groups {
		if sectorID == "" || g.SectorID == sectorID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) UpdateGroup(ctx context.Context, id, name, sectorID string) (models.ProductionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("UpdateGroup")

	group, ok := m.groups[id]
	if !ok {
		return models.ProductionGroup{}, db.ErrNotFound
	}
	for otherID, g := range m.groups {
		if otherID != id && g.Name == name && g.SectorID == sectorID {
			return models.ProductionGroup{}, db.ErrConflict
		}
	}
	group.Name = name
	group.SectorID = sectorID
	group.UpdatedAt = time.Now().UTC()
	m.groups[id] = group
	return group, nil
}

func (m *MemStore) DeleteGroup(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("DeleteGroup")

	if _, ok := m.groups[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

// ---- Products ----

func (m *MemStore) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("CreateProduct")

	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	for _, p := range m.products {
		if p.Name == product.Name || p.Slug == product.Slug {
			return models.Product{}, db.ErrConflict
		}
	}
	id, ts := m.next()
	product.ID = id
	product.CreatedAt = ts
	product.UpdatedAt = ts
	m.products[id] = product
	return product, nil
}

func (m *MemStore) CreateProductWithAssignments(ctx context.Context, product models.Product, pairs []models.AssignmentPair) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("CreateProductWithAssignments")

	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	// All-or-nothing: the conflict check happens before anything is stored.
	for _, p := range m.products {
		if p.Name == product.Name || p.Slug == product.Slug {
			return models.Product{}, db.ErrConflict
		}
	}

	id, ts := m.next()
	product.ID = id
	product.CreatedAt = ts
	product.UpdatedAt = ts
	m.products[id] = product

	for _, pair := range pairs {
		aid, ats := m.next()
		m.assignments[aid] = models.ProductAssignment{
			ID:                aid,
			ProductID:         id,
			ProductionGroupID: pair.ProductionGroupID,
			SectorID:          pair.SectorID,
			CreatedAt:         ats,
		}
	}
	return product, nil
}

func (m *MemStore) SearchProductsByName(ctx context.Context, query string, limit int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("SearchProductsByName")

	needle := strings.ToLower(query)
	var out []models.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetProduct")

	product, ok := m.products[id]
	if !ok {
		return models.Product{}, db.ErrNotFound
	}
	return product, nil
}

func (m *MemStore) GetProductByName(ctx context.Context, name string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetProductByName")

	for _, p := range m.products {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Product{}, db.ErrNotFound
}

func (m *MemStore) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetProductsByIDs")

	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ListProducts")

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) UpdateProduct(ctx context.Context, id string, product models.Product) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("UpdateProduct")

	existing, ok := m.products[id]
	if !ok {
		return models.Product{}, db.ErrNotFound
	}
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	for otherID, p := range m.products {
		if otherID != id && (p.Name == product.Name || p.Slug == product.Slug) {
			return models.Product{}, db.ErrConflict
		}
	}
	existing.Name = product.Name
	existing.Slug = product.Slug
	existing.Description = product.Description
	existing.ImageURL = product.ImageURL
	existing.UpdatedAt = time.Now().UTC()
	m.products[id] = existing
	return existing, nil
}

func (m *MemStore) DeleteProduct(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("DeleteProduct")

	if _, ok := m.products[id]; !ok {
		return 0, db.ErrNotFound
	}
	deleted := 0
	for aid, a := range m.assignments {
		if a.ProductID == id {
			delete(m.assignments, aid)
			deleted++
		}
	}
	delete(m.products, id)
	return deleted, nil
}

// ---- Assignments ----

func (m *MemStore) CreateAssignment(ctx context.Context, productID, groupID, sectorID string) (models.ProductAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("CreateAssignment")

	for _, a := range m.assignments {
		if a.ProductID == productID && a.ProductionGroupID == groupID && a.SectorID == sectorID {
			return models.ProductAssignment{}, db.ErrConflict
		}
	}
	id, ts := m.next()
	assignment := models.ProductAssignment{
		ID:                id,
		ProductID:         productID,
		ProductionGroupID: groupID,
		SectorID:          sectorID,
		CreatedAt:         ts,
	}
	m.assignments[id] = assignment
	return assignment, nil
}

func (m *MemStore) HasAssignment(ctx context.Context, productID, groupID, sectorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("HasAssignment")

	for _, a := range m.assignments {
		if a.ProductID == productID && a.ProductionGroupID == groupID &&
			(sectorID == "" || a.SectorID == sectorID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) GetAssignmentsByGroupIDs(ctx context.Context, groupIDs []string) ([]models.ProductAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetAssignmentsByGroupIDs")

	wanted := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}
	var out []models.ProductAssignment
	for _, a := range m.assignments {
		if wanted[a.ProductionGroupID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ProductAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ListAssignments")

	var out []models.ProductAssignment
	for _, a := range m.assignments {
		if filter.ProductID != "" && a.ProductID != filter.ProductID {
			continue
		}
		if filter.ProductionGroupID != "" && a.ProductionGroupID != filter.ProductionGroupID {
			continue
		}
		if filter.SectorID != "" && a.SectorID != filter.SectorID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) DeleteAssignment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("DeleteAssignment")

	if _, ok := m.assignments[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.assignments, id)
	return nil
}

func (m *MemStore) DeleteAssignmentByTriple(ctx context.Context, productID, groupID, sectorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("DeleteAssignmentByTriple")

	for id, a := range m.assignments {
		if a.ProductID == productID && a.ProductionGroupID == groupID && a.SectorID == sectorID {
			delete(m.assignments, id)
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *MemStore) ReplaceProductAssignments(ctx context.Context, productID string, pairs []models.AssignmentPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ReplaceProductAssignments")

	for id, a := range m.assignments {
		if a.ProductID == productID {
			delete(m.assignments, id)
		}
	}
	for _, pair := range pairs {
		id, ts := m.next()
		m.assignments[id] = models.ProductAssignment{
			ID:                id,
			ProductID:         productID,
			ProductionGroupID: pair.ProductionGroupID,
			SectorID:          pair.SectorID,
			CreatedAt:         ts,
		}
	}
	return nil
}

func (m *MemStore) ResetCatalog(ctx context.Context) (models.ResetCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ResetCatalog")

	counts := models.ResetCounts{
		Assignments: len(m.assignments),
		Products:    len(m.products),
		Groups:      len(m.groups),
		Sectors:     len(m.sectors),
	}
	m.assignments = make(map[string]models.ProductAssignment)
	m.products = make(map[string]models.Product)
	m.groups = make(map[string]models.ProductionGroup)
	m.sectors = make(map[string]models.Sector)
	return counts, nil
}

// ---- Requests ----

func (m *MemStore) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("CreateRequest")

	id, ts := m.next()
	req.ID = id
	req.CreatedAt = ts
	req.UpdatedAt = ts
	m.requests[id] = cloneRequest(req)
	return req, nil
}

func (m *MemStore) GetRequest(ctx context.Context, id string) (models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("GetRequest")

	req, ok := m.requests[id]
	if !ok {
		return models.Request{}, db.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (m *MemStore) AppendRequestStatus(ctx context.Context, id string, entry models.StatusHistoryEntry) (models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("AppendRequestStatus")

	req, ok := m.requests[id]
	if !ok {
		return models.Request{}, db.ErrNotFound
	}
	req.Status = entry.Status
	req.StatusHistory = append(req.StatusHistory, entry)
	req.UpdatedAt = time.Now().UTC()
	m.requests[id] = cloneRequest(req)
	return cloneRequest(req), nil
}

func (m *MemStore) ListRequests(ctx context.Context, filter models.RequestFilter, page, limit int) ([]models.Request, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("ListRequests")

	var matched []models.Request
	for _, req := range m.requests {
		if filter.SectorID != "" && (req.SectorID == nil || *req.SectorID != filter.SectorID) {
			continue
		}
		if filter.ProductionGroupID != "" && !hasGroup(req, filter.ProductionGroupID) {
			continue
		}
		if filter.ProductID != "" && !hasProduct(req, filter.ProductID) {
			continue
		}
		matched = append(matched, cloneRequest(req))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if limit > 0 {
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func hasGroup(req models.Request, groupID string) bool {
	for _, p := range req.Products {
		if p.ProductionGroupID == groupID {
			return true
		}
	}
	return false
}

func hasProduct(req models.Request, productID string) bool {
	for _, p := range req.Products {
		if p.ProductID == productID {
			return true
		}
	}
	return false
}

func cloneRequest(req models.Request) models.Request {
	out := req
	out.Products = append([]models.RequestProduct(nil), req.Products...)
	out.ProductionGroupIDs = append([]string(nil), req.ProductionGroupIDs...)
	out.StatusHistory = append([]models.StatusHistoryEntry(nil), req.StatusHistory...)
	if req.SectorID != nil {
		sectorID := *req.SectorID
		out.SectorID = &sectorID
	}
	return out
}

// SeedAssignment is a convenience for tests: it creates (or reuses) the named
// sector, group and product and links them with an assignment, returning the
// three ids.
func (m *MemStore) SeedAssignment(ctx context.Context, sectorName, groupName, productName string) (sectorID, groupID, productID string) {
	sector, err := m.GetSectorByName(ctx, sectorName)
	if err != nil {
		sector, _ = m.CreateSector(ctx, sectorName)
	}
	group, err := m.GetGroupByNameAndSector(ctx, groupName, sector.ID)
	if err != nil {
		group, _ = m.CreateGroup(ctx, groupName, sector.ID)
	}
	product, err := m.GetProductByName(ctx, productName)
	if err != nil {
		product, _ = m.CreateProduct(ctx, models.Product{Name: productName})
	}
	m.CreateAssignment(ctx, product.ID, group.ID, sector.ID)
	return sector.ID, group.ID, product.ID
}

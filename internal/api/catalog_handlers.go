package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// GetOptions resolves the cascading group/product options for one sector or
// the "all" sentinel.
func (h *Handler) GetOptions(c *gin.Context) {
	sectorID := c.Query("sectorId")
	if sectorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sectorId param is required"})
		return
	}

	options, err := h.resolver.Resolve(c.Request.Context(), sectorID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

// ---- Sectors ----

type sectorPayload struct {
	Name string `json:"name" binding:"required"`
}

// ListSectors returns every sector, newest first.
func (h *Handler) ListSectors(c *gin.Context) {
	sectors, err := h.store.ListSectors(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if sectors == nil {
		sectors = []models.Sector{}
	}
	c.JSON(http.StatusOK, sectors)
}

// CreateSector creates a sector; a duplicate name is a conflict.
func (h *Handler) CreateSector(c *gin.Context) {
	var payload sectorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sector name is required"})
		return
	}

	sector, err := h.store.CreateSector(c.Request.Context(), strings.TrimSpace(payload.Name))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sector)
}

// UpdateSector renames a sector.
func (h *Handler) UpdateSector(c *gin.Context) {
	var payload sectorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sector name is required"})
		return
	}

	sector, err := h.store.UpdateSector(c.Request.Context(), c.Param("id"), strings.TrimSpace(payload.Name))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sector)
}

// DeleteSector removes a sector. Its groups and assignments are not cascaded;
// readers tolerate the dangling references.
func (h *Handler) DeleteSector(c *gin.Context) {
	if err := h.store.DeleteSector(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sector deleted"})
}

// ---- Production groups ----

type groupPayload struct {
	Name     string `json:"name" binding:"required"`
	SectorID string `json:"sector_id" binding:"required"`
}

// ListGroups returns production groups sorted by name, optionally scoped to
// one sector.
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.store.ListGroups(c.Request.Context(), c.Query("sectorId"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if groups == nil {
		groups = []models.ProductionGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

// CreateGroup creates a production group under a sector.
func (h *Handler) CreateGroup(c *gin.Context) {
	var payload groupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and sector_id are required"})
		return
	}

	if _, err := h.store.GetSector(c.Request.Context(), payload.SectorID); err != nil {
		respondStoreError(c, err)
		return
	}

	group, err := h.store.CreateGroup(c.Request.Context(), strings.TrimSpace(payload.Name), payload.SectorID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// UpdateGroup renames a group and/or moves it to another sector.
func (h *Handler) UpdateGroup(c *gin.Context) {
	var payload groupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and sector_id are required"})
		return
	}

	group, err := h.store.UpdateGroup(c.Request.Context(), c.Param("id"), strings.TrimSpace(payload.Name), payload.SectorID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteGroup removes a production group without cascading.
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.store.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "production group deleted"})
}

// ---- Products ----

type productPayload struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	ImageURL    string                  `json:"image_url"`
	Assignments []models.AssignmentPair `json:"assignments"`
}

// ListProducts returns all products, or the subset named by the productId
// query param (single id or comma-separated set).
func (h *Handler) ListProducts(c *gin.Context) {
	idParam := c.Query("productId")
	ctx := c.Request.Context()

	if idParam == "" {
		products, err := h.store.ListProducts(ctx)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if products == nil {
			products = []models.Product{}
		}
		c.JSON(http.StatusOK, products)
		return
	}

	ids := strings.Split(idParam, ",")
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}
	if len(ids) == 1 {
		product, err := h.store.GetProduct(ctx, ids[0])
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
		return
	}

	products, err := h.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// productSearchLimit caps product name search results.
const productSearchLimit = 20

// SearchProducts returns products whose name contains the query,
// case-insensitively, capped at productSearchLimit results.
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be at least 2 characters"})
		return
	}

	products, err := h.store.SearchProductsByName(c.Request.Context(), query, productSearchLimit)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product by id.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.store.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct creates a product together with its assignment set in one
// transaction; at least one (sector, group) pair is required.
func (h *Handler) CreateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product name is required"})
		return
	}
	if len(payload.Assignments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one sector and production group assignment is required"})
		return
	}

	product, err := h.store.CreateProductWithAssignments(c.Request.Context(), models.Product{
		Name:        strings.TrimSpace(payload.Name),
		Description: strings.TrimSpace(payload.Description),
		ImageURL:    strings.TrimSpace(payload.ImageURL),
	}, payload.Assignments)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product":             product,
		"assignments_created": len(payload.Assignments),
	})
}

// UpdateProduct updates product fields; when an assignments array is present
// the product's assignment set is replaced with it.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product name is required"})
		return
	}

	ctx := c.Request.Context()
	product, err := h.store.UpdateProduct(ctx, c.Param("id"), models.Product{
		Name:        strings.TrimSpace(payload.Name),
		Description: strings.TrimSpace(payload.Description),
		ImageURL:    strings.TrimSpace(payload.ImageURL),
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if len(payload.Assignments) > 0 {
		if err := h.store.ReplaceProductAssignments(ctx, product.ID, payload.Assignments); err != nil {
			respondStoreError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product, cascading to its assignment rows, and
// reports how many were removed.
func (h *Handler) DeleteProduct(c *gin.Context) {
	deleted, err := h.store.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "product deleted",
		"assignments_deleted": deleted,
	})
}

// ---- Assignments ----

type assignmentPayload struct {
	ProductID         string `json:"product_id" binding:"required"`
	ProductionGroupID string `json:"production_group_id" binding:"required"`
	SectorID          string `json:"sector_id" binding:"required"`
}

// ListAssignments returns assignments matching the optional filters, with
// foreign keys resolved to display names. A dangling reference shows up with
// an empty name instead of failing the listing.
func (h *Handler) ListAssignments(c *gin.Context) {
	ctx := c.Request.Context()
	assignments, err := h.store.ListAssignments(ctx, models.AssignmentFilter{
		ProductID:         c.Query("productId"),
		ProductionGroupID: c.Query("productionGroupId"),
		SectorID:          c.Query("sectorId"),
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	views, err := h.resolveAssignmentNames(c, assignments)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(views),
		"assignments": views,
	})
}

func (h *Handler) resolveAssignmentNames(c *gin.Context, assignments []models.ProductAssignment) ([]models.AssignmentView, error) {
	ctx := c.Request.Context()

	productIDs := make(map[string]bool)
	groupIDs := make(map[string]bool)
	sectorIDs := make(map[string]bool)
	for _, a := range assignments {
		productIDs[a.ProductID] = true
		groupIDs[a.ProductionGroupID] = true
		sectorIDs[a.SectorID] = true
	}

	products, err := h.store.GetProductsByIDs(ctx, setKeys(productIDs))
	if err != nil {
		return nil, err
	}
	groups, err := h.store.GetGroupsByIDs(ctx, setKeys(groupIDs))
	if err != nil {
		return nil, err
	}
	sectors, err := h.store.GetSectorsByIDs(ctx, setKeys(sectorIDs))
	if err != nil {
		return nil, err
	}

	productName := make(map[string]string, len(products))
	for _, p := range products {
		productName[p.ID] = p.Name
	}
	groupName := make(map[string]string, len(groups))
	for _, g := range groups {
		groupName[g.ID] = g.Name
	}
	sectorName := make(map[string]string, len(sectors))
	for _, s := range sectors {
		sectorName[s.ID] = s.Name
	}

	views := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, models.AssignmentView{
			ID:                  a.ID,
			ProductID:           a.ProductID,
			ProductName:         productName[a.ProductID],
			ProductionGroupID:   a.ProductionGroupID,
			ProductionGroupName: groupName[a.ProductionGroupID],
			SectorID:            a.SectorID,
			SectorName:          sectorName[a.SectorID],
		})
	}
	return views, nil
}

func setKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// CreateAssignment adds one pivot row; the duplicate triple is a conflict.
func (h *Handler) CreateAssignment(c *gin.Context) {
	var payload assignmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id, production_group_id and sector_id are required"})
		return
	}

	assignment, err := h.store.CreateAssignment(c.Request.Context(),
		payload.ProductID, payload.ProductionGroupID, payload.SectorID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// DeleteAssignment removes a pivot row by id, or by the exact triple when the
// three query params are given instead.
func (h *Handler) DeleteAssignment(c *gin.Context) {
	ctx := c.Request.Context()

	if id := c.Param("id"); id != "" {
		if err := h.store.DeleteAssignment(ctx, id); err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
		return
	}

	productID := c.Query("productId")
	groupID := c.Query("productionGroupId")
	sectorID := c.Query("sectorId")
	if productID == "" || groupID == "" || sectorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id or (productId + productionGroupId + sectorId) is required"})
		return
	}

	if err := h.store.DeleteAssignmentByTriple(ctx, productID, groupID, sectorID); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignment deleted"})
}

// ValidateAssignment checks whether a (product, group[, sector]) combination
// exists in the catalog.
func (h *Handler) ValidateAssignment(c *gin.Context) {
	productID := c.Query("productId")
	groupID := c.Query("productionGroupId")
	if productID == "" || groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId and productionGroupId are required"})
		return
	}

	valid, err := h.validator.Validate(c.Request.Context(), productID, groupID, c.Query("sectorId"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// ResetCatalog wipes the four catalog collections in dependency order and
// reports per-collection deleted counts.
func (h *Handler) ResetCatalog(c *gin.Context) {
	counts, err := h.store.ResetCatalog(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "catalog data reset successful",
		"deleted_counts": counts,
	})
}

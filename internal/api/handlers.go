package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/catalog"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/db"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/request"
)

// Store is everything the HTTP layer needs from the persistent store. The
// pgx-backed db.Database implements it; tests plug in the in-memory store.
type Store interface {
	catalog.Store
	request.Store

	ListSectors(ctx context.Context) ([]models.Sector, error)
	UpdateSector(ctx context.Context, id, name string) (models.Sector, error)
	DeleteSector(ctx context.Context, id string) error
	GetSectorsByIDs(ctx context.Context, ids []string) ([]models.Sector, error)

	GetGroupsByIDs(ctx context.Context, ids []string) ([]models.ProductionGroup, error)
	UpdateGroup(ctx context.Context, id, name, sectorID string) (models.ProductionGroup, error)
	DeleteGroup(ctx context.Context, id string) error

	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	SearchProductsByName(ctx context.Context, query string, limit int) ([]models.Product, error)
	CreateProductWithAssignments(ctx context.Context, product models.Product, pairs []models.AssignmentPair) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, product models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) (int, error)
	ReplaceProductAssignments(ctx context.Context, productID string, pairs []models.AssignmentPair) error

	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ProductAssignment, error)
	DeleteAssignment(ctx context.Context, id string) error
	DeleteAssignmentByTriple(ctx context.Context, productID, groupID, sectorID string) error

	ResetCatalog(ctx context.Context) (models.ResetCounts, error)
	Health(ctx context.Context) error
}

// Handler wires the HTTP endpoints to the catalog and request engines.
type Handler struct {
	store     Store
	resolver  *catalog.Resolver
	validator *catalog.Validator
	importer  *catalog.Importer
	remote    *catalog.RemoteSource
	lifecycle *request.Lifecycle
	customers *request.QueryService
}

// NewHandler creates all services over one store handle.
func NewHandler(store Store) *Handler {
	validator := catalog.NewValidator(store)
	return &Handler{
		store:     store,
		resolver:  catalog.NewResolver(store),
		validator: validator,
		importer:  catalog.NewImporter(store),
		remote:    catalog.NewRemoteSource(),
		lifecycle: request.NewLifecycle(store, validator),
		customers: request.NewQueryService(store),
	}
}

// Health responds 200 when the store is reachable.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// respondStoreError maps typed store/service errors onto HTTP statuses.
func respondStoreError(c *gin.Context, err error) {
	var validationErr *catalog.ValidationError
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, request.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "validation failed",
			"invalid_entries": validationErr.Entries,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Package request owns the sample-request lifecycle and the admin-facing
// customer queries over submitted requests.
package request

import (
	"context"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// Store is the slice of the persistent store the request engine needs; the
// catalog batch-getters back the name resolution of the customer views.
type Store interface {
	CreateRequest(ctx context.Context, req models.Request) (models.Request, error)
	GetRequest(ctx context.Context, id string) (models.Request, error)
	AppendRequestStatus(ctx context.Context, id string, entry models.StatusHistoryEntry) (models.Request, error)
	ListRequests(ctx context.Context, filter models.RequestFilter, page, limit int) ([]models.Request, int, error)

	GetSectorsByIDs(ctx context.Context, ids []string) ([]models.Sector, error)
	GetGroupsByIDs(ctx context.Context, ids []string) ([]models.ProductionGroup, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

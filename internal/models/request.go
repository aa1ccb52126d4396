package models

import (
	"time"
)

// RequestStatus is the fulfillment stage of a sample request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusReview    RequestStatus = "review"
	StatusApproved  RequestStatus = "approved"
	StatusPreparing RequestStatus = "preparing"
	StatusShipped   RequestStatus = "shipped"
	StatusDelivered RequestStatus = "delivered"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// IsValid checks membership in the eight known statuses. There is
// deliberately no reachability graph between them; any known status may
// follow any other so admins can correct mistakes by hand.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusReview, StatusApproved, StatusPreparing,
		StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s ends the lifecycle.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// RequestProduct is one requested catalog combination. Each entry must match
// an existing ProductAssignment at creation time.
type RequestProduct struct {
	ProductID         string `json:"product_id" db:"product_id"`
	ProductionGroupID string `json:"production_group_id" db:"production_group_id"`
}

// StatusHistoryEntry is one append-only lifecycle transition record. The
// first entry is always the initial status.
type StatusHistoryEntry struct {
	Status    RequestStatus `json:"status" db:"status"`
	Note      string        `json:"note,omitempty" db:"note"`
	UpdatedBy string        `json:"updated_by,omitempty" db:"updated_by"`
	Timestamp time.Time     `json:"timestamp" db:"created_at"`
}

// Request is a customer-submitted sample request. After creation only its
// status changes, and only through the lifecycle manager.
type Request struct {
	ID          string `json:"id" db:"id"`
	CompanyName string `json:"company_name" db:"company_name"`
	FirstName   string `json:"first_name,omitempty" db:"first_name"`
	LastName    string `json:"last_name,omitempty" db:"last_name"`
	Email       string `json:"email" db:"email"`
	Phone       string `json:"phone" db:"phone"`
	Address     string `json:"address,omitempty" db:"address"`

	SectorID *string `json:"sector_id" db:"sector_id"`

	// ProductionGroupIDs is derived from Products at creation time for
	// cheap group-level filtering.
	ProductionGroupIDs []string         `json:"production_group_ids"`
	Products           []RequestProduct `json:"products"`

	Status        RequestStatus        `json:"status" db:"status"`
	StatusHistory []StatusHistoryEntry `json:"status_history"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateRequestPayload is the public form submission body, decoupled from the
// stored Request entity.
type CreateRequestPayload struct {
	CompanyName string           `json:"company_name" binding:"required"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email" binding:"required,email"`
	Phone       string           `json:"phone" binding:"required"`
	Address     string           `json:"address"`
	SectorID    string           `json:"sector_id"`
	Products    []RequestProduct `json:"products" binding:"required"`
}

// TransitionPayload moves a request to a new lifecycle status.
type TransitionPayload struct {
	Status RequestStatus `json:"status" binding:"required"`
	Note   string        `json:"note"`
}

// RequestFilter holds the equality filters of the customer list. Group and
// product match against the embedded products entries, not a join.
type RequestFilter struct {
	SectorID          string
	ProductionGroupID string
	ProductID         string
}

// CustomerRow is a flattened request for the admin dashboard: sector, group
// and product ids resolved to display names.
type CustomerRow struct {
	ID               string        `json:"id"`
	CompanyName      string        `json:"company_name"`
	FirstName        string        `json:"first_name,omitempty"`
	LastName         string        `json:"last_name,omitempty"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	Address          string        `json:"address,omitempty"`
	Sector           string        `json:"sector"`
	ProductionGroups string        `json:"production_groups"`
	Products         string        `json:"products"`
	Status           RequestStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Pagination describes the page window of a customer listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// CustomerPage is one page of flattened customer rows. Search mode returns
// all matches in a single page.
type CustomerPage struct {
	Customers  []CustomerRow `json:"customers"`
	Pagination Pagination    `json:"pagination"`
}

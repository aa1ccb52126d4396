package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/request"
)

// CreateRequest accepts a public sample-request submission. The whole batch
// of product entries is validated against the catalog; any unmatched entry
// rejects the submission with the full offender list and nothing is stored.
func (h *Handler) CreateRequest(c *gin.Context) {
	var payload models.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_name, email, phone and products are required"})
		return
	}

	created, err := h.lifecycle.Create(c.Request.Context(), payload)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

// GetRequest returns one request with its full status history.
func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// TransitionRequest moves a request to a new lifecycle status and appends a
// history entry attributed to the calling admin.
func (h *Handler) TransitionRequest(c *gin.Context) {
	var payload models.TransitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	updated, err := h.lifecycle.Transition(c.Request.Context(), c.Param("id"),
		payload.Status, payload.Note, callerEmail(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetCustomers serves the admin dashboard listing: filtered and paginated by
// default, or a single unpaginated page of matches when a search term is
// present.
func (h *Handler) GetCustomers(c *gin.Context) {
	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := parsePositiveInt(v); err == nil {
			page = parsed
		}
	}

	pageData, err := h.customers.Query(c.Request.Context(), request.QueryParams{
		Page:              page,
		Search:            c.Query("search"),
		SectorID:          c.Query("sector"),
		ProductionGroupID: c.Query("productionGroup"),
		ProductID:         c.Query("product"),
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageData)
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("value must be positive")
	}
	return n, nil
}

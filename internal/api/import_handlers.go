package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/catalog"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/logging"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/models"
)

// ImportWorkbook runs the dedup import pipeline over an uploaded .xlsx
// workbook of (sector, group, product) rows. The operation is safely
// re-runnable: rows already in the catalog create nothing and count nothing.
func (h *Handler) ImportWorkbook(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer f.Close()

	rows, err := catalog.ParseWorkbook(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse workbook"})
		return
	}

	h.runImport(c, rows, fileHeader.Filename)
}

type remoteImportPayload struct {
	URL string `json:"url"`
}

// ImportRemote fetches the configured CSV export of the external catalog
// source and runs the same pipeline. The URL may be posted in the body or
// preset via CATALOG_SOURCE_URL.
func (h *Handler) ImportRemote(c *gin.Context) {
	var payload remoteImportPayload
	_ = c.ShouldBindJSON(&payload)

	url := payload.URL
	if url == "" {
		url = os.Getenv("CATALOG_SOURCE_URL")
	}
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required (body or CATALOG_SOURCE_URL)"})
		return
	}

	rows, err := h.remote.Fetch(c.Request.Context(), url)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog source unavailable"})
		return
	}

	h.runImport(c, rows, url)
}

func (h *Handler) runImport(c *gin.Context, rows []models.CatalogRow, source string) {
	report, err := h.importer.ImportRows(c.Request.Context(), rows)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	logging.LogKV("info", "catalog import completed", map[string]interface{}{
		"source":      source,
		"rows":        len(rows),
		"sectors":     report.Sectors,
		"groups":      report.Groups,
		"products":    report.Products,
		"assignments": report.Assignments,
		"skipped":     report.RowsSkipped,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "normalized import completed",
		"inserted": report,
	})
}

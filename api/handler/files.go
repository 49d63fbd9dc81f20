package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/dataset"
	"github.com/use-agent/harvest/models"
)

// ListFiles returns a handler for GET /api/v1/files.
func ListFiles(store *dataset.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := store.List()
		if err != nil {
			respondError(c, models.NewHarvestError(models.ErrCodeNotFound, "data directory unavailable", err))
			return
		}
		c.JSON(http.StatusOK, models.FilesResponse{
			Success: true,
			Dir:     store.Dir(),
			Files:   files,
		})
	}
}

// Preview returns a handler for GET /api/v1/files/:name/preview?rows=N.
// rows defaults to dataset.DefaultPreviewRows and is capped at maxRows.
func Preview(store *dataset.Store, maxRows int) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := intQuery(c, "rows", dataset.DefaultPreviewRows)
		if err != nil {
			respondError(c, err)
			return
		}
		if maxRows > 0 && rows > maxRows {
			rows = maxRows
		}

		name := c.Param("name")
		cols, data, err := store.Head(name, rows)
		if err != nil {
			respondError(c, datasetError(err))
			return
		}
		c.JSON(http.StatusOK, models.PreviewResponse{
			Success: true,
			Name:    name,
			Columns: cols,
			Rows:    data,
		})
	}
}

// Series returns a handler for GET /api/v1/files/:name/series?x=&y=&limit=.
func Series(store *dataset.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		x, y := c.Query("x"), c.Query("y")
		if x == "" || y == "" {
			respondError(c, models.NewHarvestError(models.ErrCodeInvalidInput, "both x and y columns are required", nil))
			return
		}
		limit, err := intQuery(c, "limit", 0)
		if err != nil {
			respondError(c, err)
			return
		}

		name := c.Param("name")
		xs, ys, err := store.Series(name, x, y, limit)
		if err != nil {
			respondError(c, datasetError(err))
			return
		}
		c.JSON(http.StatusOK, models.SeriesResponse{
			Success: true,
			Name:    name,
			XColumn: x,
			YColumn: y,
			X:       xs,
			Y:       ys,
		})
	}
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, models.NewHarvestError(models.ErrCodeInvalidInput, key+" must be a non-negative integer", err)
	}
	return n, nil
}

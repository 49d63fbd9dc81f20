package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/dataset"
	"github.com/use-agent/harvest/models"
)

func respondError(c *gin.Context, err error) {
	var herr *models.HarvestError
	if !errors.As(err, &herr) {
		herr = models.NewHarvestError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(herr), models.ErrorResponse{
		Success: false,
		Error:   herr.ToDetail(),
	})
}

// datasetError gives dataset failures their API error codes.
func datasetError(err error) error {
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		return models.NewHarvestError(models.ErrCodeNotFound, "file not found", err)
	case errors.Is(err, dataset.ErrInvalidName), errors.Is(err, dataset.ErrUnknownColumn), errors.Is(err, dataset.ErrEmpty):
		return models.NewHarvestError(models.ErrCodeInvalidInput, err.Error(), err)
	default:
		return err
	}
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.HarvestError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeNavigation, models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}

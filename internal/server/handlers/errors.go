package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
)

// respondError maps service errors to a status code and a JSON error body.
// Server-side failures are logged with the failed action.
func respondError(c *gin.Context, logger *zap.Logger, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidArguments), errors.Is(err, costing.ErrUnknownPeriod):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownKind), errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.Error(action+" failed", zap.Error(err))
		c.JSON(status, gin.H{"error": action + " failed"})
		return
	}
	logger.Warn(action+" rejected", zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", models.ErrInvalidArguments, name)
	}
	return id, nil
}

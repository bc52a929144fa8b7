package controller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/venuebook/venuebook-backend/internal/errors"
	"github.com/venuebook/venuebook-backend/pkg/logger"
)

// Query parameter helpers. A missing or unparsable value reads as absent;
// search filters degrade instead of failing the whole request.

func floatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intQuery(c *gin.Context, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func uintQuery(c *gin.Context, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v := strings.EqualFold(raw, "true") || raw == "1"
	return &v
}

// parseIDParam reads the :id path parameter; a malformed ID responds with
// 400 and reports false.
func parseIDParam(c *gin.Context, log *logger.Logger) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid ID parameter", map[string]interface{}{
			"id":    idStr,
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

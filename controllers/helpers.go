package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gestionempresa/audit"
)

// currentActor builds the audit actor from the authenticated request context
func currentActor(c *gin.Context) audit.Actor {
	actor := audit.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	if id, exists := c.Get("user_id"); exists {
		if userID, ok := id.(uint); ok {
			actor.ID = &userID
		}
	}
	if name, exists := c.Get("name"); exists {
		if userName, ok := name.(string); ok {
			actor.Name = userName
		}
	}

	return actor
}

// currentUserID returns the authenticated employee id, or false
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// paginationParams reads page/limit query parameters with defaults
func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return page, limit
}

// paginationMeta builds the pagination block of a list envelope
func paginationMeta(total int64, page, limit int) gin.H {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return gin.H{
		"total": total,
		"pages": pages,
		"page":  page,
		"limit": limit,
	}
}

// parseDateQuery parses a YYYY-MM-DD query parameter, nil when absent
func parseDateQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &parsed
}

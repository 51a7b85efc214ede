package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gestionempresa/audit"
	"gestionempresa/config"
	"gestionempresa/database"
)

// GetAuditLogs returns a filtered, paginated listing of audit entries,
// newest first. System entries are hidden unless include_system=true.
func GetAuditLogs(c *gin.Context) {
	page, limit := paginationParams(c)

	filters := audit.QueryFilters{
		Action:        c.Query("action"),
		Module:        c.Query("module"),
		TargetType:    c.Query("target_type"),
		Search:        c.Query("search"),
		StartDate:     parseDateQuery(c, "start_date"),
		EndDate:       parseDateQuery(c, "end_date"),
		IncludeSystem: c.Query("include_system") == "true",
	}
	if userID := c.Query("user_id"); userID != "" {
		parsed, err := strconv.ParseUint(userID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user_id"})
			return
		}
		id := uint(parsed)
		filters.UserID = &id
	}
	if targetID := c.Query("target_id"); targetID != "" {
		parsed, err := strconv.ParseUint(targetID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid target_id"})
			return
		}
		id := uint(parsed)
		filters.TargetID = &id
	}

	result, err := audit.NewStore(database.DB).Query(filters, page, limit)
	if err != nil {
		log.Printf("Audit query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Items,
		"pagination": paginationMeta(result.Total, page, limit),
	})
}

// GetAuditStatistics aggregates audit activity over an optional date range
func GetAuditStatistics(c *gin.Context) {
	stats, err := audit.NewStore(database.DB).GetStatistics(
		parseDateQuery(c, "start_date"),
		parseDateQuery(c, "end_date"),
		c.Query("include_system") == "true",
	)
	if err != nil {
		log.Printf("Audit statistics error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// RunAuditRetention removes audit entries older than the configured retention
// window. A sweep that removes nothing is still a success.
func RunAuditRetention(c *gin.Context) {
	days := config.AppConfig.AuditRetentionDays
	if override := c.Query("days"); override != "" {
		parsed, err := strconv.Atoi(override)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid days"})
			return
		}
		days = parsed
	}

	removed, err := audit.NewStore(database.DB).RetentionSweep(days)
	if err != nil {
		log.Printf("Audit retention sweep error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Retention sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Retention sweep completed",
		"data":    gin.H{"removed": removed, "days": days},
	})
}

// RunAuditArchive removes audit entries older than the configured archive
// window
func RunAuditArchive(c *gin.Context) {
	days := config.AppConfig.AuditArchiveDays
	if override := c.Query("days"); override != "" {
		parsed, err := strconv.Atoi(override)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid days"})
			return
		}
		days = parsed
	}

	archived, err := audit.NewStore(database.DB).ArchiveSweep(days)
	if err != nil {
		log.Printf("Audit archive sweep error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Archive sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Archive sweep completed",
		"data":    gin.H{"archived": archived, "days": days},
	})
}

// OptimizeAuditIndexes refreshes planner statistics for the audit table
func OptimizeAuditIndexes(c *gin.Context) {
	if err := audit.NewStore(database.DB).OptimizeIndexes(); err != nil {
		log.Printf("Audit index optimization error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Optimization failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Audit indexes optimized"})
}

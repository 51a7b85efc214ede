package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gestionempresa/audit"
	"gestionempresa/database"
)

// ScheduledNotificationRequest contains data for scheduling a notification
type ScheduledNotificationRequest struct {
	Title        string    `json:"title" binding:"required"`
	Message      string    `json:"message" binding:"required"`
	Type         string    `json:"type"`
	Priority     string    `json:"priority"`
	EntityType   string    `json:"entity_type"`
	EntityID     *uint     `json:"entity_id"`
	EmployeeID   uint      `json:"employee_id" binding:"required"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	Frequency    string    `json:"frequency"`
	Metadata     string    `json:"metadata"`
}

// GetMyNotifications returns the authenticated employee's notifications,
// newest first, optionally filtered to unread ones
func GetMyNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	page, limit := paginationParams(c)
	query := database.DB.Model(&database.Notification{}).Where("employee_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}
	if notifType := c.Query("type"); notifType != "" {
		query = query.Where("type = ?", notifType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch notifications"})
		return
	}

	notifications := []database.Notification{}
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&notifications).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       notifications,
		"pagination": paginationMeta(total, page, limit),
	})
}

// GetUnreadCount returns how many unread notifications the employee has
func GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	var count int64
	if err := database.DB.Model(&database.Notification{}).
		Where("employee_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"unread": count}})
}

// MarkNotificationRead marks a single notification as read. Employees can
// only touch their own notifications.
func MarkNotificationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid notification id"})
		return
	}

	result := database.DB.Model(&database.Notification{}).
		Where("id = ? AND employee_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("Database error: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks every unread notification of the employee as read
func MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	result := database.DB.Model(&database.Notification{}).
		Where("employee_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("Database error: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read", "data": gin.H{"updated": result.RowsAffected}})
}

// GetScheduledNotifications lists scheduled notifications, optionally
// filtered to pending ones
func GetScheduledNotifications(c *gin.Context) {
	page, limit := paginationParams(c)
	query := database.DB.Model(&database.ScheduledNotification{})
	if c.Query("pending") == "true" {
		query = query.Where("executed = ? AND is_active = ?", false, true)
	}
	if employeeID := c.Query("employee_id"); employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch scheduled notifications"})
		return
	}

	scheduled := []database.ScheduledNotification{}
	if err := query.Order("scheduled_for ASC").Offset((page - 1) * limit).Limit(limit).Find(&scheduled).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch scheduled notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       scheduled,
		"pagination": paginationMeta(total, page, limit),
	})
}

// CreateScheduledNotification schedules a notification manually
func CreateScheduledNotification(c *gin.Context) {
	var request ScheduledNotificationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	if request.Type == "" {
		request.Type = database.NotificationTypeSystem
	}
	if request.Priority == "" {
		request.Priority = database.PriorityMedium
	}
	if request.Frequency == "" {
		request.Frequency = database.FrequencyOnce
	}
	switch request.Frequency {
	case database.FrequencyOnce, database.FrequencyDaily, database.FrequencyWeekly, database.FrequencyMonthly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid frequency"})
		return
	}

	var employee database.Employee
	if err := database.DB.First(&employee, request.EmployeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Employee not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	scheduled := database.ScheduledNotification{
		Title:        request.Title,
		Message:      request.Message,
		Type:         request.Type,
		Priority:     request.Priority,
		EntityType:   request.EntityType,
		EntityID:     request.EntityID,
		EmployeeID:   request.EmployeeID,
		ScheduledFor: request.ScheduledFor,
		Frequency:    request.Frequency,
		Metadata:     request.Metadata,
		IsActive:     true,
	}

	intent, err := audit.CreateWithAudit(database.DB, &scheduled, database.TargetNotification)
	if err != nil {
		log.Printf("Scheduled notification creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to schedule notification"})
		return
	}

	scheduledID := scheduled.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetNotification, &scheduledID, database.ModuleNotifications); err != nil {
		log.Printf("Failed to record scheduled notification audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Notification scheduled", "data": scheduled})
}

// CancelScheduledNotification deactivates a pending scheduled notification.
// The record is kept for traceability; cleanup removes it later.
func CancelScheduledNotification(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid notification id"})
		return
	}

	var scheduled database.ScheduledNotification
	if err := database.DB.First(&scheduled, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Scheduled notification not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}
	if scheduled.Executed {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Notification already executed"})
		return
	}

	intent, err := audit.UpdateWithAudit(database.DB, &scheduled, id, map[string]interface{}{"is_active": false}, database.TargetNotification)
	if err != nil {
		log.Printf("Scheduled notification cancel error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to cancel notification"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetNotification, &id, database.ModuleNotifications); err != nil {
		log.Printf("Failed to record scheduled notification cancel audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Scheduled notification cancelled"})
}

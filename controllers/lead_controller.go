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

// LeadRequest contains data for creating a lead
type LeadRequest struct {
	Name         string     `json:"name" binding:"required"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Company      string     `json:"company"`
	Source       string     `json:"source"`
	Notes        string     `json:"notes"`
	AssignedTo   *uint      `json:"assigned_to"`
	NextFollowUp *time.Time `json:"next_follow_up"`
}

// GetLeads returns a filtered, paginated lead listing
func GetLeads(c *gin.Context) {
	page, limit := paginationParams(c)

	query := database.DB.Model(&database.Lead{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR company LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch leads"})
		return
	}

	leads := []database.Lead{}
	if err := query.Preload("Assignee").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&leads).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       leads,
		"pagination": paginationMeta(total, page, limit),
	})
}

// CreateLead creates a lead and records the creation audit entry
func CreateLead(c *gin.Context) {
	var request LeadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	lead := database.Lead{
		Name:         request.Name,
		Email:        request.Email,
		Phone:        request.Phone,
		Company:      request.Company,
		Source:       request.Source,
		Status:       database.LeadStatusNew,
		Notes:        request.Notes,
		AssignedTo:   request.AssignedTo,
		NextFollowUp: request.NextFollowUp,
	}

	intent, err := audit.CreateWithAudit(database.DB, &lead, database.TargetLead)
	if err != nil {
		log.Printf("Lead creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create lead"})
		return
	}

	leadID := lead.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetLead, &leadID, database.ModuleLeads); err != nil {
		log.Printf("Failed to record lead creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Lead created", "data": lead})
}

// UpdateLead applies a partial update and records the change diff. Moving the
// follow-up date produces an "actualización_fechas" entry; a status change
// takes precedence as "cambio_estado".
func UpdateLead(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid lead id"})
		return
	}

	var request struct {
		Name         *string    `json:"name"`
		Email        *string    `json:"email"`
		Phone        *string    `json:"phone"`
		Company      *string    `json:"company"`
		Source       *string    `json:"source"`
		Status       *string    `json:"status"`
		Notes        *string    `json:"notes"`
		AssignedTo   *uint      `json:"assigned_to"`
		NextFollowUp *time.Time `json:"next_follow_up"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	patch := map[string]interface{}{}
	if request.Name != nil {
		patch["name"] = *request.Name
	}
	if request.Email != nil {
		patch["email"] = *request.Email
	}
	if request.Phone != nil {
		patch["phone"] = *request.Phone
	}
	if request.Company != nil {
		patch["company"] = *request.Company
	}
	if request.Source != nil {
		patch["source"] = *request.Source
	}
	if request.Status != nil {
		patch["status"] = *request.Status
	}
	if request.Notes != nil {
		patch["notes"] = *request.Notes
	}
	if request.AssignedTo != nil {
		patch["assigned_to"] = *request.AssignedTo
	}
	if request.NextFollowUp != nil {
		patch["next_follow_up"] = *request.NextFollowUp
	}

	var lead database.Lead
	intent, err := audit.UpdateWithAudit(database.DB, &lead, id, patch, database.TargetLead)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Lead not found"})
			return
		}
		log.Printf("Lead update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update lead"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetLead, &id, database.ModuleLeads); err != nil {
		log.Printf("Failed to record lead update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Lead updated", "data": lead})
}

// DeleteLead removes a lead, keeping its last state in the audit log
func DeleteLead(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid lead id"})
		return
	}

	var lead database.Lead
	intent, err := audit.DeleteWithAudit(database.DB, &lead, id, database.TargetLead)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Lead not found"})
			return
		}
		log.Printf("Lead deletion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete lead"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetLead, &id, database.ModuleLeads); err != nil {
		log.Printf("Failed to record lead deletion audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Lead deleted"})
}

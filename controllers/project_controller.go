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

// ProjectRequest contains data for creating or updating a project
type ProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ClientID    *uint      `json:"client_id"`
	ManagerID   *uint      `json:"manager_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      float64    `json:"budget"`
}

// GetProjects returns a filtered, paginated project listing
func GetProjects(c *gin.Context) {
	page, limit := paginationParams(c)

	query := database.DB.Model(&database.Project{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch projects"})
		return
	}

	projects := []database.Project{}
	if err := query.Preload("Client").Preload("Manager").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&projects).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       projects,
		"pagination": paginationMeta(total, page, limit),
	})
}

// GetProjectByID returns a single project with its relations
func GetProjectByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid project id"})
		return
	}

	var project database.Project
	if err := database.DB.Preload("Client").Preload("Manager").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Project not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": project})
}

// CreateProject creates a project and records the creation audit entry
func CreateProject(c *gin.Context) {
	var request ProjectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	status := request.Status
	if status == "" {
		status = database.ProjectStatusActive
	}

	project := database.Project{
		Name:        request.Name,
		Description: request.Description,
		Status:      status,
		ClientID:    request.ClientID,
		ManagerID:   request.ManagerID,
		StartDate:   request.StartDate,
		EndDate:     request.EndDate,
		Budget:      request.Budget,
	}

	intent, err := audit.CreateWithAudit(database.DB, &project, database.TargetProject)
	if err != nil {
		log.Printf("Project creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create project"})
		return
	}

	projectID := project.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetProject, &projectID, database.ModuleProjects); err != nil {
		log.Printf("Failed to record project creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Project created", "data": project})
}

// UpdateProject applies a partial update and records the change diff. A status
// transition is refined into a "cambio_estado" entry by the audit layer.
func UpdateProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid project id"})
		return
	}

	var request struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		ClientID    *uint      `json:"client_id"`
		ManagerID   *uint      `json:"manager_id"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Budget      *float64   `json:"budget"`
		Progress    *int       `json:"progress"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	patch := map[string]interface{}{}
	if request.Name != nil {
		patch["name"] = *request.Name
	}
	if request.Description != nil {
		patch["description"] = *request.Description
	}
	if request.Status != nil {
		patch["status"] = *request.Status
	}
	if request.ClientID != nil {
		patch["client_id"] = *request.ClientID
	}
	if request.ManagerID != nil {
		patch["manager_id"] = *request.ManagerID
	}
	if request.StartDate != nil {
		patch["start_date"] = *request.StartDate
	}
	if request.EndDate != nil {
		patch["end_date"] = *request.EndDate
	}
	if request.Budget != nil {
		patch["budget"] = *request.Budget
	}
	if request.Progress != nil {
		patch["progress"] = *request.Progress
	}

	var project database.Project
	intent, err := audit.UpdateWithAudit(database.DB, &project, id, patch, database.TargetProject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Project not found"})
			return
		}
		log.Printf("Project update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update project"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetProject, &id, database.ModuleProjects); err != nil {
		log.Printf("Failed to record project update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project updated", "data": project})
}

// DeleteProject removes a project, keeping its last state in the audit log
func DeleteProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid project id"})
		return
	}

	var project database.Project
	intent, err := audit.DeleteWithAudit(database.DB, &project, id, database.TargetProject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Project not found"})
			return
		}
		log.Printf("Project deletion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete project"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetProject, &id, database.ModuleProjects); err != nil {
		log.Printf("Failed to record project deletion audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted"})
}

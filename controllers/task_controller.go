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

// TaskRequest contains data for creating a task
type TaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	ProjectID   *uint      `json:"project_id"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// GetTasks returns a filtered, paginated task listing
func GetTasks(c *gin.Context) {
	page, limit := paginationParams(c)

	query := database.DB.Model(&database.Task{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if c.Query("overdue") == "true" {
		query = query.Where("due_date < ? AND status NOT IN ?", time.Now(),
			[]string{database.TaskStatusCompleted, database.TaskStatusCancelled})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch tasks"})
		return
	}

	tasks := []database.Task{}
	if err := query.Preload("Project").Preload("Assignee").
		Order("due_date ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&tasks).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       tasks,
		"pagination": paginationMeta(total, page, limit),
	})
}

// CreateTask creates a task and records the creation audit entry
func CreateTask(c *gin.Context) {
	var request TaskRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	priority := request.Priority
	if priority == "" {
		priority = database.PriorityMedium
	}

	task := database.Task{
		Title:       request.Title,
		Description: request.Description,
		Status:      database.TaskStatusPending,
		Priority:    priority,
		ProjectID:   request.ProjectID,
		AssignedTo:  request.AssignedTo,
		DueDate:     request.DueDate,
	}

	intent, err := audit.CreateWithAudit(database.DB, &task, database.TargetTask)
	if err != nil {
		log.Printf("Task creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create task"})
		return
	}

	taskID := task.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetTask, &taskID, database.ModuleTasks); err != nil {
		log.Printf("Failed to record task creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Task created", "data": task})
}

// UpdateTask applies a partial update and records the change diff
func UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid task id"})
		return
	}

	var request struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		ProjectID   *uint      `json:"project_id"`
		AssignedTo  *uint      `json:"assigned_to"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	patch := map[string]interface{}{}
	if request.Title != nil {
		patch["title"] = *request.Title
	}
	if request.Description != nil {
		patch["description"] = *request.Description
	}
	if request.Status != nil {
		patch["status"] = *request.Status
	}
	if request.Priority != nil {
		patch["priority"] = *request.Priority
	}
	if request.ProjectID != nil {
		patch["project_id"] = *request.ProjectID
	}
	if request.AssignedTo != nil {
		patch["assigned_to"] = *request.AssignedTo
	}
	if request.DueDate != nil {
		patch["due_date"] = *request.DueDate
	}

	var task database.Task
	intent, err := audit.UpdateWithAudit(database.DB, &task, id, patch, database.TargetTask)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
			return
		}
		log.Printf("Task update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update task"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetTask, &id, database.ModuleTasks); err != nil {
		log.Printf("Failed to record task update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task updated", "data": task})
}

// CompleteTask marks a task as completed
func CompleteTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid task id"})
		return
	}

	patch := map[string]interface{}{
		"status":       database.TaskStatusCompleted,
		"completed_at": time.Now(),
	}

	var task database.Task
	intent, err := audit.UpdateWithAudit(database.DB, &task, id, patch, database.TargetTask)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
			return
		}
		log.Printf("Task completion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to complete task"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetTask, &id, database.ModuleTasks); err != nil {
		log.Printf("Failed to record task completion audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task completed", "data": task})
}

// DeleteTask removes a task, keeping its last state in the audit log
func DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid task id"})
		return
	}

	var task database.Task
	intent, err := audit.DeleteWithAudit(database.DB, &task, id, database.TargetTask)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
			return
		}
		log.Printf("Task deletion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete task"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetTask, &id, database.ModuleTasks); err != nil {
		log.Printf("Failed to record task deletion audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gestionempresa/audit"
	"gestionempresa/database"
)

// ClientRequest contains data for creating a client
type ClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
	Notes   string `json:"notes"`
}

// GetClients returns a filtered, paginated client listing
func GetClients(c *gin.Context) {
	page, limit := paginationParams(c)

	query := database.DB.Model(&database.Client{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR company LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch clients"})
		return
	}

	clients := []database.Client{}
	if err := query.Order("name ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&clients).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       clients,
		"pagination": paginationMeta(total, page, limit),
	})
}

// CreateClient creates a client and records the creation audit entry
func CreateClient(c *gin.Context) {
	var request ClientRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	client := database.Client{
		Name:     request.Name,
		Email:    request.Email,
		Phone:    request.Phone,
		Company:  request.Company,
		Address:  request.Address,
		TaxID:    request.TaxID,
		Notes:    request.Notes,
		IsActive: true,
	}

	intent, err := audit.CreateWithAudit(database.DB, &client, database.TargetClient)
	if err != nil {
		log.Printf("Client creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create client"})
		return
	}

	clientID := client.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetClient, &clientID, database.ModuleClients); err != nil {
		log.Printf("Failed to record client creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Client created", "data": client})
}

// UpdateClient applies a partial update and records the change diff
func UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid client id"})
		return
	}

	var request struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Company  *string `json:"company"`
		Address  *string `json:"address"`
		TaxID    *string `json:"tax_id"`
		Notes    *string `json:"notes"`
		IsActive *bool   `json:"is_active"`
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
	if request.Address != nil {
		patch["address"] = *request.Address
	}
	if request.TaxID != nil {
		patch["tax_id"] = *request.TaxID
	}
	if request.Notes != nil {
		patch["notes"] = *request.Notes
	}
	if request.IsActive != nil {
		patch["is_active"] = *request.IsActive
	}

	var client database.Client
	intent, err := audit.UpdateWithAudit(database.DB, &client, id, patch, database.TargetClient)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Client not found"})
			return
		}
		log.Printf("Client update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update client"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetClient, &id, database.ModuleClients); err != nil {
		log.Printf("Failed to record client update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Client updated", "data": client})
}

// DeleteClient removes a client, keeping its last state in the audit log
func DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid client id"})
		return
	}

	var client database.Client
	intent, err := audit.DeleteWithAudit(database.DB, &client, id, database.TargetClient)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Client not found"})
			return
		}
		log.Printf("Client deletion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete client"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetClient, &id, database.ModuleClients); err != nil {
		log.Printf("Failed to record client deletion audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Client deleted"})
}

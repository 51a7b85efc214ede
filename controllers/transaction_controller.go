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

// TransactionRequest contains data for registering a movement
type TransactionRequest struct {
	Type        string    `json:"type" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Date        time.Time `json:"date" binding:"required"`
	ProjectID   *uint     `json:"project_id"`
	InvoiceID   *uint     `json:"invoice_id"`
}

// GetTransactions returns a filtered, paginated transaction listing
func GetTransactions(c *gin.Context) {
	page, limit := paginationParams(c)

	query := database.DB.Model(&database.Transaction{})
	if txType := c.Query("type"); txType != "" {
		query = query.Where("type = ?", txType)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if startDate := parseDateQuery(c, "start_date"); startDate != nil {
		query = query.Where("date >= ?", *startDate)
	}
	if endDate := parseDateQuery(c, "end_date"); endDate != nil {
		query = query.Where("date < ?", endDate.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch transactions"})
		return
	}

	transactions := []database.Transaction{}
	if err := query.Order("date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&transactions).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       transactions,
		"pagination": paginationMeta(total, page, limit),
	})
}

// CreateTransaction registers an income or expense movement
func CreateTransaction(c *gin.Context) {
	var request TransactionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	if request.Type != database.TransactionTypeIncome && request.Type != database.TransactionTypeExpense {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid transaction type"})
		return
	}

	userID, _ := currentUserID(c)
	transaction := database.Transaction{
		Type:        request.Type,
		Category:    request.Category,
		Description: request.Description,
		Amount:      request.Amount,
		Date:        request.Date,
		ProjectID:   request.ProjectID,
		InvoiceID:   request.InvoiceID,
		CreatedBy:   userID,
	}

	intent, err := audit.CreateWithAudit(database.DB, &transaction, database.TargetTransaction)
	if err != nil {
		log.Printf("Transaction creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create transaction"})
		return
	}

	transactionID := transaction.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetTransaction, &transactionID, database.ModuleTransactions); err != nil {
		log.Printf("Failed to record transaction creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Transaction created", "data": transaction})
}

// UpdateTransaction corrects a movement; amount changes are refined into an
// "actualización_valor" audit entry.
func UpdateTransaction(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid transaction id"})
		return
	}

	var request struct {
		Category    *string    `json:"category"`
		Description *string    `json:"description"`
		Amount      *float64   `json:"amount"`
		Date        *time.Time `json:"date"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	patch := map[string]interface{}{}
	if request.Category != nil {
		patch["category"] = *request.Category
	}
	if request.Description != nil {
		patch["description"] = *request.Description
	}
	if request.Amount != nil {
		patch["amount"] = *request.Amount
	}
	if request.Date != nil {
		patch["date"] = *request.Date
	}

	var transaction database.Transaction
	intent, err := audit.UpdateWithAudit(database.DB, &transaction, id, patch, database.TargetTransaction)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Transaction not found"})
			return
		}
		log.Printf("Transaction update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update transaction"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetTransaction, &id, database.ModuleTransactions); err != nil {
		log.Printf("Failed to record transaction update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction updated", "data": transaction})
}

package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"

	"gestionempresa/audit"
	"gestionempresa/config"
	"gestionempresa/database"
)

// InvoiceRequest contains data for creating an invoice
type InvoiceRequest struct {
	ClientID  uint      `json:"client_id" binding:"required"`
	ProjectID *uint     `json:"project_id"`
	Concept   string    `json:"concept" binding:"required"`
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	Tax       float64   `json:"tax"`
	DueDate   time.Time `json:"due_date" binding:"required"`
}

// PaymentVerificationRequest contains data for verifying a payment
type PaymentVerificationRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	OrderID   string `json:"order_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	InvoiceID uint   `json:"invoice_id" binding:"required"`
}

// GetInvoices returns a filtered, paginated invoice listing
func GetInvoices(c *gin.Context) {
	page, limit := paginationParams(c)

	query := database.DB.Model(&database.Invoice{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if c.Query("due_soon") == "true" {
		query = query.Where("status = ? AND due_date < ?", database.InvoiceStatusPending, time.Now().AddDate(0, 0, 7))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch invoices"})
		return
	}

	invoices := []database.Invoice{}
	if err := query.Preload("Client").
		Order("due_date ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       invoices,
		"pagination": paginationMeta(total, page, limit),
	})
}

// CreateInvoice creates an invoice with a generated folio
func CreateInvoice(c *gin.Context) {
	var request InvoiceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	var client database.Client
	if err := database.DB.First(&client, request.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Client not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	invoice := database.Invoice{
		Folio:     "FAC-" + strings.ToUpper(uuid.New().String()[:8]),
		ClientID:  request.ClientID,
		ProjectID: request.ProjectID,
		Concept:   request.Concept,
		Amount:    request.Amount,
		Tax:       request.Tax,
		Total:     request.Amount + request.Tax,
		Status:    database.InvoiceStatusPending,
		IssueDate: time.Now(),
		DueDate:   request.DueDate,
	}

	intent, err := audit.CreateWithAudit(database.DB, &invoice, database.TargetInvoice)
	if err != nil {
		log.Printf("Invoice creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create invoice"})
		return
	}

	invoiceID := invoice.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetInvoice, &invoiceID, database.ModuleInvoices); err != nil {
		log.Printf("Failed to record invoice creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Invoice created", "data": invoice})
}

// UpdateInvoice applies a partial update and records the change diff
func UpdateInvoice(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid invoice id"})
		return
	}

	var request struct {
		Concept *string    `json:"concept"`
		Amount  *float64   `json:"amount"`
		Tax     *float64   `json:"tax"`
		Status  *string    `json:"status"`
		DueDate *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	patch := map[string]interface{}{}
	if request.Concept != nil {
		patch["concept"] = *request.Concept
	}
	if request.Amount != nil {
		patch["amount"] = *request.Amount
	}
	if request.Tax != nil {
		patch["tax"] = *request.Tax
	}
	if request.Amount != nil || request.Tax != nil {
		var current database.Invoice
		if err := database.DB.First(&current, id).Error; err == nil {
			amount := current.Amount
			tax := current.Tax
			if request.Amount != nil {
				amount = *request.Amount
			}
			if request.Tax != nil {
				tax = *request.Tax
			}
			patch["total"] = amount + tax
		}
	}
	if request.Status != nil {
		patch["status"] = *request.Status
	}
	if request.DueDate != nil {
		patch["due_date"] = *request.DueDate
	}

	var invoice database.Invoice
	intent, err := audit.UpdateWithAudit(database.DB, &invoice, id, patch, database.TargetInvoice)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Invoice not found"})
			return
		}
		log.Printf("Invoice update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update invoice"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetInvoice, &id, database.ModuleInvoices); err != nil {
		log.Printf("Failed to record invoice update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invoice updated", "data": invoice})
}

// GeneratePaymentOrder creates a Razorpay order for a pending invoice
func GeneratePaymentOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid invoice id"})
		return
	}

	var invoice database.Invoice
	if err := database.DB.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Invoice not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	if invoice.Status != database.InvoiceStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment can only be generated for pending invoices"})
		return
	}

	client := razorpay.NewClient(config.AppConfig.RazorpayKey, config.AppConfig.RazorpaySecret)

	// amount in the smallest currency unit
	data := map[string]interface{}{
		"amount":   int64(invoice.Total * 100),
		"currency": "INR",
		"receipt":  fmt.Sprintf("invoice_%d", invoice.ID),
		"notes": map[string]interface{}{
			"invoice_id": invoice.ID,
			"folio":      invoice.Folio,
		},
	}

	order, err := client.Order.Create(data, nil)
	if err != nil {
		log.Printf("Razorpay order creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"razorpay_order_id": order["id"],
		"amount":            data["amount"],
		"currency":          "INR",
		"folio":             invoice.Folio,
	}})
}

// VerifyPayment validates the Razorpay signature and marks the invoice paid
func VerifyPayment(c *gin.Context) {
	var request PaymentVerificationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	mac := hmac.New(sha256.New, []byte(config.AppConfig.RazorpaySecret))
	mac.Write([]byte(request.OrderID + "|" + request.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(request.Signature)) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment signature"})
		return
	}

	patch := map[string]interface{}{
		"status":      database.InvoiceStatusPaid,
		"paid_at":     time.Now(),
		"payment_ref": request.PaymentID,
	}

	var invoice database.Invoice
	intent, err := audit.UpdateWithAudit(database.DB, &invoice, request.InvoiceID, patch, database.TargetInvoice)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Invoice not found"})
			return
		}
		log.Printf("Invoice payment update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to mark invoice as paid"})
		return
	}

	invoiceID := invoice.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetInvoice, &invoiceID, database.ModuleInvoices); err != nil {
		log.Printf("Failed to record payment audit: %v", err)
	}

	// register the matching income movement
	userID, _ := currentUserID(c)
	transaction := database.Transaction{
		Type:        database.TransactionTypeIncome,
		Category:    "facturación",
		Description: fmt.Sprintf("Pago de factura %s", invoice.Folio),
		Amount:      invoice.Total,
		Date:        time.Now(),
		ProjectID:   invoice.ProjectID,
		InvoiceID:   &invoiceID,
		CreatedBy:   userID,
	}
	if err := database.DB.Create(&transaction).Error; err != nil {
		log.Printf("Failed to create payment transaction: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified", "data": invoice})
}

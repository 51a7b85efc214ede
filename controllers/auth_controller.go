package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gestionempresa/audit"
	"gestionempresa/config"
	"gestionempresa/database"
	"gestionempresa/utils"
)

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest contains data for creating an employee
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required"`
	Phone      string `json:"phone"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// ChangePasswordRequest contains data for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// LoginResponse is returned on successful authentication
type LoginResponse struct {
	Token  string            `json:"token"`
	User   database.Employee `json:"user"`
	Expiry int64             `json:"expiry"`
}

// Login authenticates an employee and issues a JWT
func Login(c *gin.Context) {
	var request LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	var employee database.Employee
	if err := database.DB.Where("email = ?", request.Email).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	if !employee.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Account is inactive"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(request.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	expiryTime := time.Now().Add(config.GetJWTExpiration())
	token, err := utils.GenerateJWT(employee.ID, employee.Name, employee.Email, employee.Role, expiryTime)
	if err != nil {
		log.Printf("JWT error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	// Audit is fail-open: a failed write is logged but the login still succeeds
	userID := employee.ID
	actor := audit.Actor{ID: &userID, Name: employee.Name, IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if _, err := audit.NewRecorder(database.DB).Record(actor, database.ActionLogin,
		fmt.Sprintf("Inicio de sesión de %s", employee.Email),
		database.TargetEmployee, &userID, nil, nil, database.ModuleAuth); err != nil {
		log.Printf("Failed to record login audit: %v", err)
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: employee, Expiry: expiryTime.Unix()})
}

// Logout records the logout action. Token invalidation is client-side.
func Logout(c *gin.Context) {
	actor := currentActor(c)
	if _, err := audit.NewRecorder(database.DB).Record(actor, database.ActionLogout,
		fmt.Sprintf("Cierre de sesión de %s", actor.Name),
		database.TargetEmployee, actor.ID, nil, nil, database.ModuleAuth); err != nil {
		log.Printf("Failed to record logout audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Register creates a new employee (admin only)
func Register(c *gin.Context) {
	var request RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	if request.Role != database.RoleAdmin && request.Role != database.RoleManager && request.Role != database.RoleEmployee {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role"})
		return
	}

	var count int64
	if err := database.DB.Model(&database.Employee{}).Where("email = ?", request.Email).Count(&count).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Password hash error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	employee := database.Employee{
		Name:         request.Name,
		Email:        request.Email,
		PasswordHash: string(hash),
		Role:         request.Role,
		Phone:        request.Phone,
		Position:     request.Position,
		Department:   request.Department,
		IsActive:     true,
	}

	intent, err := audit.CreateWithAudit(database.DB, &employee, database.TargetEmployee)
	if err != nil {
		log.Printf("Employee creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create employee"})
		return
	}

	employeeID := employee.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetEmployee, &employeeID, database.ModuleEmployees); err != nil {
		log.Printf("Failed to record employee creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Employee created", "data": employee})
}

// GetProfile returns the authenticated employee
func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var employee database.Employee
	if err := database.DB.First(&employee, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employee not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": employee})
}

// UpdateProfile updates the authenticated employee's own profile
func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var request struct {
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		Position   string `json:"position"`
		Department string `json:"department"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	patch := map[string]interface{}{}
	if request.Name != "" {
		patch["name"] = request.Name
	}
	if request.Phone != "" {
		patch["phone"] = request.Phone
	}
	if request.Position != "" {
		patch["position"] = request.Position
	}
	if request.Department != "" {
		patch["department"] = request.Department
	}

	var employee database.Employee
	intent, err := audit.UpdateWithAudit(database.DB, &employee, userID, patch, database.TargetEmployee)
	if err != nil {
		log.Printf("Profile update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetEmployee, &userID, database.ModuleEmployees); err != nil {
		log.Printf("Failed to record profile update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "data": employee})
}

// ChangePassword changes the authenticated employee's password
func ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var request ChangePasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	var employee database.Employee
	if err := database.DB.First(&employee, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employee not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(request.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Current password is incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Password hash error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	if err := database.DB.Model(&employee).Update("password_hash", string(hash)).Error; err != nil {
		log.Printf("Password update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to change password"})
		return
	}

	// snapshots omitted on purpose, credentials never reach the audit log
	if _, err := audit.NewRecorder(database.DB).Record(currentActor(c), database.ActionUpdate,
		"Cambio de contraseña", database.TargetEmployee, &userID, nil, nil, database.ModuleAuth); err != nil {
		log.Printf("Failed to record password change audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed"})
}

// RefreshToken issues a new token for a logged-in employee
func RefreshToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var employee database.Employee
	if err := database.DB.First(&employee, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employee not found"})
		return
	}

	expiryTime := time.Now().Add(config.GetJWTExpiration())
	token, err := utils.GenerateJWT(employee.ID, employee.Name, employee.Email, employee.Role, expiryTime)
	if err != nil {
		log.Printf("JWT error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": token, "expiry": expiryTime.Unix()}})
}

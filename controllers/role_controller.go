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

// RoleRequest contains data for creating a role
type RoleRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PermissionIDs []uint `json:"permission_ids"`
}

// PermissionRequest contains data for creating a permission
type PermissionRequest struct {
	Name        string `json:"name" binding:"required"`
	Module      string `json:"module" binding:"required"`
	Description string `json:"description"`
}

// GetRoles returns all roles with their permissions
func GetRoles(c *gin.Context) {
	roles := []database.Role{}
	if err := database.DB.Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": roles})
}

// CreateRole creates a role, optionally attaching permissions
func CreateRole(c *gin.Context) {
	var request RoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	role := database.Role{Name: request.Name, Description: request.Description}
	if len(request.PermissionIDs) > 0 {
		permissions := []database.Permission{}
		if err := database.DB.Find(&permissions, request.PermissionIDs).Error; err != nil {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}
		role.Permissions = permissions
	}

	intent, err := audit.CreateWithAudit(database.DB, &role, database.TargetRole)
	if err != nil {
		log.Printf("Role creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create role"})
		return
	}

	roleID := role.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetRole, &roleID, database.ModuleRoles); err != nil {
		log.Printf("Failed to record role creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Role created", "data": role})
}

// UpdateRole updates a role's name or description
func UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role id"})
		return
	}

	var request struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
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

	var role database.Role
	intent, err := audit.UpdateWithAudit(database.DB, &role, id, patch, database.TargetRole)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Role not found"})
			return
		}
		log.Printf("Role update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update role"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetRole, &id, database.ModuleRoles); err != nil {
		log.Printf("Failed to record role update audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role updated", "data": role})
}

// DeleteRole removes a role, keeping its last state in the audit log
func DeleteRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role id"})
		return
	}

	var role database.Role
	intent, err := audit.DeleteWithAudit(database.DB, &role, id, database.TargetRole)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Role not found"})
			return
		}
		log.Printf("Role deletion error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete role"})
		return
	}

	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetRole, &id, database.ModuleRoles); err != nil {
		log.Printf("Failed to record role deletion audit: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role deleted"})
}

// GetPermissions returns all permissions grouped by module order
func GetPermissions(c *gin.Context) {
	permissions := []database.Permission{}
	if err := database.DB.Order("module ASC, name ASC").Find(&permissions).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": permissions})
}

// CreatePermission creates a permission
func CreatePermission(c *gin.Context) {
	var request PermissionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
		return
	}

	permission := database.Permission{
		Name:        request.Name,
		Module:      request.Module,
		Description: request.Description,
	}

	intent, err := audit.CreateWithAudit(database.DB, &permission, database.TargetPermission)
	if err != nil {
		log.Printf("Permission creation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create permission"})
		return
	}

	permissionID := permission.ID
	if _, err := audit.NewRecorder(database.DB).RecordIntent(currentActor(c), intent, database.TargetPermission, &permissionID, database.ModuleRoles); err != nil {
		log.Printf("Failed to record permission creation audit: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Permission created", "data": permission})
}

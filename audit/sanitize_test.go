package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gestionempresa/database"
)

func TestSanitizeStripsSensitiveFields(t *testing.T) {
	employee := database.Employee{
		Name:         "Ana García",
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         database.RoleAdmin,
		IsActive:     true,
	}

	out := Sanitize(&employee)

	assert.Equal(t, "Ana García", out["name"])
	assert.Equal(t, "ana@example.com", out["email"])
	assert.NotContains(t, out, "password_hash")
	assert.NotContains(t, out, "password")
}

func TestSanitizeStripsTimestamps(t *testing.T) {
	project := database.Project{
		Name:   "Migración ERP",
		Status: database.ProjectStatusActive,
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()

	out := Sanitize(&project)

	assert.NotContains(t, out, "CreatedAt")
	assert.NotContains(t, out, "UpdatedAt")
	assert.NotContains(t, out, "DeletedAt")
	assert.Equal(t, "Migración ERP", out["name"])
}

func TestSanitizeNilRecord(t *testing.T) {
	out := Sanitize(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSanitizeMapInput(t *testing.T) {
	out := Sanitize(map[string]interface{}{
		"name":     "x",
		"token":    "abc",
		"secret":   "def",
		"api_key":  "ghi",
		"progress": 50,
	})

	assert.Equal(t, "x", out["name"])
	assert.Equal(t, float64(50), out["progress"])
	assert.NotContains(t, out, "token")
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "api_key")
}

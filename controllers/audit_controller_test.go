package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gestionempresa/audit"
	"gestionempresa/config"
	"gestionempresa/database"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.InitConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.AuditLog{}))
	database.DB = db
}

func testRouter(register func(*gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("name", "Admin Pruebas")
		c.Set("role", database.RoleAdmin)
	})
	register(api)
	return r
}

func seedAuditEntry(t *testing.T, userName, action, module string, createdAt time.Time) {
	t.Helper()
	entry := database.AuditLog{
		UserName:    userName,
		Action:      action,
		Description: fmt.Sprintf("%s de prueba", action),
		Module:      module,
		CreatedAt:   createdAt,
	}
	require.NoError(t, database.DB.Create(&entry).Error)
}

func TestGetAuditLogsEnvelope(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	seedAuditEntry(t, "Ana García", database.ActionUpdate, database.ModuleProjects, now)
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, now)
	seedAuditEntry(t, database.SystemActorName, database.ActionExecute, database.ModuleSystem, now)

	r := testRouter(func(api *gin.RouterGroup) {
		api.GET("/admin/audit", GetAuditLogs)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/audit?action="+database.ActionUpdate, nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success    bool                `json:"success"`
		Data       []database.AuditLog `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
			Pages int   `json:"pages"`
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, database.ActionUpdate, body.Data[0].Action)
	assert.Equal(t, int64(1), body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, 25, body.Pagination.Limit)
}

func TestGetAuditLogsHidesSystemUnlessRequested(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, now)
	seedAuditEntry(t, database.SystemActorName, database.ActionExecute, database.ModuleSystem, now)

	r := testRouter(func(api *gin.RouterGroup) {
		api.GET("/admin/audit", GetAuditLogs)
	})

	fetch := func(url string) int64 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Pagination.Total
	}

	assert.Equal(t, int64(1), fetch("/api/admin/audit"))
	assert.Equal(t, int64(2), fetch("/api/admin/audit?include_system=true"))
}

func TestGetAuditLogsRejectsBadUserID(t *testing.T) {
	setupTestDB(t)

	r := testRouter(func(api *gin.RouterGroup) {
		api.GET("/admin/audit", GetAuditLogs)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit?user_id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunAuditRetentionReportsZeroRemovals(t *testing.T) {
	setupTestDB(t)
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, time.Now())

	r := testRouter(func(api *gin.RouterGroup) {
		api.POST("/admin/audit/retention", RunAuditRetention)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/audit/retention", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Removed int64 `json:"removed"`
			Days    int   `json:"days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Zero(t, body.Data.Removed)
	assert.Equal(t, config.AppConfig.AuditRetentionDays, body.Data.Days)
}

func TestRunAuditRetentionWithOverride(t *testing.T) {
	setupTestDB(t)
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, time.Now().AddDate(0, 0, -10))
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, time.Now())

	r := testRouter(func(api *gin.RouterGroup) {
		api.POST("/admin/audit/retention", RunAuditRetention)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/audit/retention?days=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Removed int64 `json:"removed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Data.Removed)

	result, err := audit.NewStore(database.DB).Query(audit.QueryFilters{}, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}

func TestGetAuditStatisticsEndpoint(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, now)
	seedAuditEntry(t, "Ana García", database.ActionCreate, database.ModuleClients, now)

	r := testRouter(func(api *gin.RouterGroup) {
		api.GET("/admin/audit/statistics", GetAuditStatistics)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/audit/statistics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			TotalEvents int64 `json:"total_events"`
			ByAction    []struct {
				Key   string `json:"key"`
				Count int64  `json:"count"`
			} `json:"by_action"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(2), body.Data.TotalEvents)
	require.NotEmpty(t, body.Data.ByAction)
	assert.Equal(t, database.ActionCreate, body.Data.ByAction[0].Key)
}

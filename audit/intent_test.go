package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gestionempresa/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&database.Employee{},
		&database.Client{},
		&database.Lead{},
		&database.Project{},
		&database.Task{},
		&database.Invoice{},
		&database.AuditLog{},
		&database.ScheduledNotification{},
		&database.Notification{},
	))
	return db
}

func TestCreateWithAudit(t *testing.T) {
	db := newTestDB(t)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive}
	intent, err := CreateWithAudit(db, &project, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.NotZero(t, project.ID)
	assert.Equal(t, database.ActionCreate, intent.Action)
	assert.Equal(t, "Creación de proyecto", intent.Description)
	assert.Equal(t, "Portal web", intent.NewData["name"])
	assert.Nil(t, intent.PreviousData)
}

func TestUpdateWithAuditDetectsChanges(t *testing.T) {
	db := newTestDB(t)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive, Budget: 1000}
	require.NoError(t, db.Create(&project).Error)

	var updated database.Project
	intent, err := UpdateWithAudit(db, &updated, project.ID, map[string]interface{}{
		"name": "Portal web v2",
	}, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionUpdate, intent.Action)
	assert.Equal(t, []string{"name"}, intent.ChangedFields)
	assert.Equal(t, "Portal web", intent.PreviousData["name"])
	assert.Equal(t, "Portal web v2", intent.NewData["name"])
	assert.Equal(t, "Portal web v2", updated.Name)
}

func TestUpdateWithAuditNoOpYieldsNilIntent(t *testing.T) {
	db := newTestDB(t)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive}
	require.NoError(t, db.Create(&project).Error)

	var updated database.Project
	intent, err := UpdateWithAudit(db, &updated, project.ID, map[string]interface{}{
		"name": "Portal web",
	}, database.TargetProject)
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestUpdateWithAuditStatusTransition(t *testing.T) {
	db := newTestDB(t)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive}
	require.NoError(t, db.Create(&project).Error)

	var updated database.Project
	intent, err := UpdateWithAudit(db, &updated, project.ID, map[string]interface{}{
		"status": database.ProjectStatusFinished,
	}, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionStatusChange, intent.Action)
	assert.Equal(t, "Cambio de estado de proyecto: activo a finalizado", intent.Description)
	assert.Equal(t, []string{"status"}, intent.ChangedFields)
}

func TestUpdateWithAuditStatusWinsOverOtherTransitions(t *testing.T) {
	db := newTestDB(t)

	manager := database.Employee{Name: "Luis", Email: "luis@example.com", Role: database.RoleManager}
	require.NoError(t, db.Create(&manager).Error)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive, Progress: 10}
	require.NoError(t, db.Create(&project).Error)

	var updated database.Project
	intent, err := UpdateWithAudit(db, &updated, project.ID, map[string]interface{}{
		"status":     database.ProjectStatusPaused,
		"manager_id": manager.ID,
		"progress":   50,
	}, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionStatusChange, intent.Action)
	assert.ElementsMatch(t, []string{"status", "manager_id", "progress"}, intent.ChangedFields)
}

func TestUpdateWithAuditAssignmentTransition(t *testing.T) {
	db := newTestDB(t)

	employee := database.Employee{Name: "Marta", Email: "marta@example.com", Role: database.RoleEmployee}
	require.NoError(t, db.Create(&employee).Error)

	task := database.Task{Title: "Revisar contrato", Status: database.TaskStatusPending, Priority: database.PriorityMedium}
	require.NoError(t, db.Create(&task).Error)

	var updated database.Task
	intent, err := UpdateWithAudit(db, &updated, task.ID, map[string]interface{}{
		"assigned_to": employee.ID,
	}, database.TargetTask)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionAssign, intent.Action)
	assert.Equal(t, "Asignación de tarea actualizada", intent.Description)
}

func TestUpdateWithAuditDatesTransition(t *testing.T) {
	db := newTestDB(t)

	task := database.Task{Title: "Revisar contrato", Status: database.TaskStatusPending}
	require.NoError(t, db.Create(&task).Error)

	due := time.Now().AddDate(0, 0, 7)
	var updated database.Task
	intent, err := UpdateWithAudit(db, &updated, task.ID, map[string]interface{}{
		"due_date": due,
	}, database.TargetTask)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionDatesUpdate, intent.Action)
}

func TestUpdateWithAuditValueTransition(t *testing.T) {
	db := newTestDB(t)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive, Budget: 1000}
	require.NoError(t, db.Create(&project).Error)

	var updated database.Project
	intent, err := UpdateWithAudit(db, &updated, project.ID, map[string]interface{}{
		"budget": 2500.0,
	}, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionValueUpdate, intent.Action)
}

func TestDeleteWithAuditCarriesLastState(t *testing.T) {
	db := newTestDB(t)

	client := database.Client{Name: "Acme SA", Email: "contacto@acme.mx"}
	require.NoError(t, db.Create(&client).Error)

	var target database.Client
	intent, err := DeleteWithAudit(db, &target, client.ID, database.TargetClient)
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, database.ActionDelete, intent.Action)
	assert.Equal(t, "Acme SA", intent.PreviousData["name"])
	assert.Nil(t, intent.NewData)
}

func TestDeleteWithAuditMissingRecord(t *testing.T) {
	db := newTestDB(t)

	var target database.Client
	intent, err := DeleteWithAudit(db, &target, 999, database.TargetClient)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, intent)
}

func TestRecordIntentNilIntentRecordsNothing(t *testing.T) {
	db := newTestDB(t)

	entry, err := NewRecorder(db).RecordIntent(SystemActor(), nil, database.TargetProject, nil, database.ModuleProjects)
	require.NoError(t, err)
	assert.Nil(t, entry)

	var count int64
	require.NoError(t, db.Model(&database.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

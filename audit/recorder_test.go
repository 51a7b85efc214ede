package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestionempresa/database"
)

func TestRecordPersistsEntry(t *testing.T) {
	db := newTestDB(t)

	userID := uint(5)
	actor := Actor{ID: &userID, Name: "Carlos Pérez", IPAddress: "10.0.0.1", UserAgent: "test-agent"}
	targetID := uint(3)

	entry, err := NewRecorder(db).Record(actor, database.ActionUpdate,
		"Actualización de proyecto #3", database.TargetProject, &targetID,
		map[string]interface{}{"status": "activo"},
		map[string]interface{}{"status": "finalizado"},
		database.ModuleProjects)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.NotZero(t, entry.ID)
	assert.Equal(t, "Carlos Pérez", entry.UserName)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.Contains(t, entry.PreviousData, "activo")
	assert.Contains(t, entry.NewData, "finalizado")
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditWriteFailureLeavesBusinessWriteIntact(t *testing.T) {
	db := newTestDB(t)

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive}
	intent, err := CreateWithAudit(db, &project, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)

	// break the audit table; callers log this error and carry on
	require.NoError(t, db.Migrator().DropTable(&database.AuditLog{}))

	projectID := project.ID
	entry, err := NewRecorder(db).RecordIntent(SystemActor(), intent, database.TargetProject, &projectID, database.ModuleProjects)
	assert.Error(t, err)
	assert.Nil(t, entry)

	// the mutation that produced the intent is untouched
	var reloaded database.Project
	require.NoError(t, db.First(&reloaded, projectID).Error)
	assert.Equal(t, "Portal web", reloaded.Name)
}

func TestAuditWriteFailureDoesNotBlockFurtherMutations(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Migrator().DropTable(&database.AuditLog{}))

	project := database.Project{Name: "Portal web", Status: database.ProjectStatusActive}
	intent, err := CreateWithAudit(db, &project, database.TargetProject)
	require.NoError(t, err)

	projectID := project.ID
	recorder := NewRecorder(db)
	_, err = recorder.RecordIntent(SystemActor(), intent, database.TargetProject, &projectID, database.ModuleProjects)
	require.Error(t, err)

	// subsequent business writes keep working while the audit path is down
	var updated database.Project
	intent, err = UpdateWithAudit(db, &updated, projectID, map[string]interface{}{
		"status": database.ProjectStatusFinished,
	}, database.TargetProject)
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, database.ProjectStatusFinished, updated.Status)

	_, err = recorder.RecordIntent(SystemActor(), intent, database.TargetProject, &projectID, database.ModuleProjects)
	assert.Error(t, err)
}

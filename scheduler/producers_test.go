package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gestionempresa/database"
)

func pendingFor(t *testing.T, db *gorm.DB, entityType string, entityID uint) []database.ScheduledNotification {
	t.Helper()
	var records []database.ScheduledNotification
	require.NoError(t, db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).Find(&records).Error)
	return records
}

func TestCheckLeadFollowUps(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db)
	employee := seedEmployee(t, db, database.RoleEmployee)

	today := time.Now()
	tomorrow := today.AddDate(0, 0, 1)
	assignee := employee.ID
	leads := []database.Lead{
		{Name: "Constructora Sol", Status: database.LeadStatusContacted, AssignedTo: &assignee, NextFollowUp: &today},
		{Name: "Mañana SA", Status: database.LeadStatusContacted, AssignedTo: &assignee, NextFollowUp: &tomorrow},
		{Name: "Sin asignar", Status: database.LeadStatusNew, NextFollowUp: &today},
		{Name: "Ganado", Status: database.LeadStatusWon, AssignedTo: &assignee, NextFollowUp: &today},
	}
	for i := range leads {
		require.NoError(t, db.Create(&leads[i]).Error)
	}

	created, err := d.CheckLeadFollowUps()
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	records := pendingFor(t, db, database.TargetLead, leads[0].ID)
	require.Len(t, records, 1)
	assert.Equal(t, employee.ID, records[0].EmployeeID)
	assert.Equal(t, database.NotificationTypeLead, records[0].Type)
	assert.Contains(t, records[0].Metadata, "lead_followup")
}

func TestCheckLeadFollowUpsIdempotentPerDay(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db)
	employee := seedEmployee(t, db, database.RoleEmployee)

	today := time.Now()
	assignee := employee.ID
	lead := database.Lead{Name: "Constructora Sol", Status: database.LeadStatusContacted, AssignedTo: &assignee, NextFollowUp: &today}
	require.NoError(t, db.Create(&lead).Error)

	first, err := d.CheckLeadFollowUps()
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := d.CheckLeadFollowUps()
	require.NoError(t, err)
	assert.Zero(t, second)

	assert.Len(t, pendingFor(t, db, database.TargetLead, lead.ID), 1)
}

func TestCheckTaskDeadlines(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db)
	employee := seedEmployee(t, db, database.RoleEmployee)

	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	inTwelveHours := now.Add(12 * time.Hour)
	inTwoDays := now.AddDate(0, 0, 2)
	assignee := employee.ID
	tasks := []database.Task{
		{Title: "Vencida", Status: database.TaskStatusPending, AssignedTo: &assignee, DueDate: &yesterday},
		{Title: "Por vencer", Status: database.TaskStatusInProgress, AssignedTo: &assignee, DueDate: &inTwelveHours},
		{Title: "Lejana", Status: database.TaskStatusPending, AssignedTo: &assignee, DueDate: &inTwoDays},
		{Title: "Completada", Status: database.TaskStatusCompleted, AssignedTo: &assignee, DueDate: &yesterday},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}

	overdue, dueSoon, err := d.CheckTaskDeadlines()
	require.NoError(t, err)
	assert.Equal(t, 1, overdue)
	assert.Equal(t, 1, dueSoon)

	overdueRecords := pendingFor(t, db, database.TargetTask, tasks[0].ID)
	require.Len(t, overdueRecords, 1)
	assert.Equal(t, database.PriorityHigh, overdueRecords[0].Priority)
	assert.Contains(t, overdueRecords[0].Metadata, "task_overdue")

	dueSoonRecords := pendingFor(t, db, database.TargetTask, tasks[1].ID)
	require.Len(t, dueSoonRecords, 1)
	assert.Equal(t, database.PriorityMedium, dueSoonRecords[0].Priority)
	assert.Contains(t, dueSoonRecords[0].Metadata, "task_due_soon")
}

func TestCheckTaskDeadlinesIdempotentPerDay(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db)
	employee := seedEmployee(t, db, database.RoleEmployee)

	yesterday := time.Now().AddDate(0, 0, -1)
	assignee := employee.ID
	task := database.Task{Title: "Vencida", Status: database.TaskStatusPending, AssignedTo: &assignee, DueDate: &yesterday}
	require.NoError(t, db.Create(&task).Error)

	overdue, _, err := d.CheckTaskDeadlines()
	require.NoError(t, err)
	assert.Equal(t, 1, overdue)

	overdue, _, err = d.CheckTaskDeadlines()
	require.NoError(t, err)
	assert.Zero(t, overdue)

	assert.Len(t, pendingFor(t, db, database.TargetTask, task.ID), 1)
}

func TestCheckUpcomingInvoices(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db)
	admin := seedEmployee(t, db, database.RoleAdmin)
	seedEmployee(t, db, database.RoleEmployee)

	client := database.Client{Name: "Acme SA"}
	require.NoError(t, db.Create(&client).Error)

	now := time.Now()
	invoices := []database.Invoice{
		{Folio: "FAC-URGENTE", ClientID: client.ID, Status: database.InvoiceStatusPending, DueDate: now.AddDate(0, 0, 2)},
		{Folio: "FAC-PROXIMA", ClientID: client.ID, Status: database.InvoiceStatusPending, DueDate: now.AddDate(0, 0, 5)},
		{Folio: "FAC-LEJANA", ClientID: client.ID, Status: database.InvoiceStatusPending, DueDate: now.AddDate(0, 0, 10)},
		{Folio: "FAC-PAGADA", ClientID: client.ID, Status: database.InvoiceStatusPaid, DueDate: now.AddDate(0, 0, 2)},
	}
	for i := range invoices {
		require.NoError(t, db.Create(&invoices[i]).Error)
	}

	created, err := d.CheckUpcomingInvoices()
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	urgent := pendingFor(t, db, database.TargetInvoice, invoices[0].ID)
	require.Len(t, urgent, 1)
	assert.Equal(t, database.PriorityHigh, urgent[0].Priority)
	assert.Equal(t, admin.ID, urgent[0].EmployeeID)

	upcoming := pendingFor(t, db, database.TargetInvoice, invoices[1].ID)
	require.Len(t, upcoming, 1)
	assert.Equal(t, database.PriorityMedium, upcoming[0].Priority)

	assert.Empty(t, pendingFor(t, db, database.TargetInvoice, invoices[2].ID))
	assert.Empty(t, pendingFor(t, db, database.TargetInvoice, invoices[3].ID))
}

func TestCheckAllRunsEverythingAndDispatches(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db)
	employee := seedEmployee(t, db, database.RoleEmployee)

	yesterday := time.Now().AddDate(0, 0, -1)
	assignee := employee.ID
	task := database.Task{Title: "Vencida", Status: database.TaskStatusPending, AssignedTo: &assignee, DueDate: &yesterday}
	require.NoError(t, db.Create(&task).Error)

	results, err := d.CheckAll()
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Equal(t, 1, results.OverdueTasks)
	assert.Equal(t, 1, results.Dispatched)

	// the producer's record was scheduled for now, so the sweep delivered it
	var notifications []database.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, employee.ID, notifications[0].EmployeeID)
	assert.Equal(t, database.NotificationTypeTask, notifications[0].Type)
}

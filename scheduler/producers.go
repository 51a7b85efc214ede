package scheduler

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gestionempresa/database"
)

// Producer check tags stored in scheduled-notification metadata. They are
// what makes each producer idempotent: one pending record per entity, per
// check, per calendar day.
const (
	checkLeadFollowUp    = "lead_followup"
	checkTaskOverdue     = "task_overdue"
	checkTaskDueSoon     = "task_due_soon"
	checkInvoiceUpcoming = "invoice_upcoming"
)

// CheckResults aggregates the counts of one full producer run
type CheckResults struct {
	LeadFollowUps    int `json:"lead_follow_ups"`
	OverdueTasks     int `json:"overdue_tasks"`
	DueSoonTasks     int `json:"due_soon_tasks"`
	UpcomingInvoices int `json:"upcoming_invoices"`
	Dispatched       int `json:"dispatched"`
}

// CheckAll runs every producer and then the dispatch sweep, in sequence.
// Used by the complete-check trigger and the manual run-checks endpoint.
func (d *Dispatcher) CheckAll() (*CheckResults, error) {
	results := &CheckResults{}
	var firstErr error

	keep := func(err error) {
		if err != nil {
			log.Printf("Notification check failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	var err error
	results.LeadFollowUps, err = d.CheckLeadFollowUps()
	keep(err)
	results.OverdueTasks, results.DueSoonTasks, err = d.CheckTaskDeadlines()
	keep(err)
	results.UpcomingInvoices, err = d.CheckUpcomingInvoices()
	keep(err)
	results.Dispatched, err = d.DispatchDue()
	keep(err)

	return results, firstErr
}

// CheckLeadFollowUps schedules one notification per lead whose follow-up is
// due today, addressed to the assigned employee.
func (d *Dispatcher) CheckLeadFollowUps() (int, error) {
	now := time.Now()
	dayStart := startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var leads []database.Lead
	if err := d.db.
		Where("next_follow_up >= ? AND next_follow_up < ?", dayStart, dayEnd).
		Where("status NOT IN ?", []string{database.LeadStatusWon, database.LeadStatusLost}).
		Where("assigned_to IS NOT NULL").
		Find(&leads).Error; err != nil {
		return 0, err
	}

	created := 0
	for i := range leads {
		lead := &leads[i]
		if d.hasPendingToday(database.TargetLead, lead.ID, checkLeadFollowUp, now) {
			continue
		}

		entityID := lead.ID
		sn := database.ScheduledNotification{
			Title:        "Seguimiento de lead pendiente",
			Message:      fmt.Sprintf("El lead %s tiene un seguimiento programado para hoy", lead.Name),
			Type:         database.NotificationTypeLead,
			Priority:     database.PriorityMedium,
			EntityType:   database.TargetLead,
			EntityID:     &entityID,
			EmployeeID:   *lead.AssignedTo,
			ScheduledFor: now,
			Frequency:    database.FrequencyOnce,
			Metadata:     checkMetadata(checkLeadFollowUp),
			IsActive:     true,
		}
		if err := d.db.Create(&sn).Error; err != nil {
			log.Printf("Failed to schedule lead follow-up notification for lead %d: %v", lead.ID, err)
			continue
		}
		created++
	}

	return created, nil
}

// CheckTaskDeadlines schedules notifications for overdue tasks and for tasks
// due within the next 24 hours. The two cases carry separate check tags, so
// a task moving from due-soon to overdue still gets its overdue notice.
func (d *Dispatcher) CheckTaskDeadlines() (overdue int, dueSoon int, err error) {
	now := time.Now()
	openStatuses := []string{database.TaskStatusCompleted, database.TaskStatusCancelled}

	var overdueTasks []database.Task
	if err := d.db.
		Where("due_date < ?", now).
		Where("status NOT IN ?", openStatuses).
		Where("assigned_to IS NOT NULL").
		Find(&overdueTasks).Error; err != nil {
		return 0, 0, err
	}

	for i := range overdueTasks {
		task := &overdueTasks[i]
		if d.hasPendingToday(database.TargetTask, task.ID, checkTaskOverdue, now) {
			continue
		}
		if d.createTaskNotification(task, checkTaskOverdue, "Tarea vencida",
			fmt.Sprintf("La tarea %q está vencida", task.Title), database.PriorityHigh, now) {
			overdue++
		}
	}

	var dueSoonTasks []database.Task
	if err := d.db.
		Where("due_date >= ? AND due_date < ?", now, now.Add(24*time.Hour)).
		Where("status NOT IN ?", openStatuses).
		Where("assigned_to IS NOT NULL").
		Find(&dueSoonTasks).Error; err != nil {
		return overdue, 0, err
	}

	for i := range dueSoonTasks {
		task := &dueSoonTasks[i]
		if d.hasPendingToday(database.TargetTask, task.ID, checkTaskDueSoon, now) {
			continue
		}
		if d.createTaskNotification(task, checkTaskDueSoon, "Tarea por vencer",
			fmt.Sprintf("La tarea %q vence en menos de 24 horas", task.Title), database.PriorityMedium, now) {
			dueSoon++
		}
	}

	return overdue, dueSoon, nil
}

// CheckUpcomingInvoices schedules notifications for pending invoices due
// within seven days, escalating to high priority at three days or less.
// Active admins are the recipients.
func (d *Dispatcher) CheckUpcomingInvoices() (int, error) {
	now := time.Now()

	var invoices []database.Invoice
	if err := d.db.
		Where("status = ?", database.InvoiceStatusPending).
		Where("due_date >= ? AND due_date < ?", now, now.AddDate(0, 0, 7)).
		Find(&invoices).Error; err != nil {
		return 0, err
	}
	if len(invoices) == 0 {
		return 0, nil
	}

	var admins []database.Employee
	if err := d.db.
		Where("role = ? AND is_active = ?", database.RoleAdmin, true).
		Find(&admins).Error; err != nil {
		return 0, err
	}

	created := 0
	for i := range invoices {
		invoice := &invoices[i]
		if d.hasPendingToday(database.TargetInvoice, invoice.ID, checkInvoiceUpcoming, now) {
			continue
		}

		priority := database.PriorityMedium
		if invoice.DueDate.Before(now.AddDate(0, 0, 3)) {
			priority = database.PriorityHigh
		}

		entityID := invoice.ID
		for j := range admins {
			sn := database.ScheduledNotification{
				Title:        "Factura próxima a vencer",
				Message:      fmt.Sprintf("La factura %s vence el %s", invoice.Folio, invoice.DueDate.Format("2006-01-02")),
				Type:         database.NotificationTypeInvoice,
				Priority:     priority,
				EntityType:   database.TargetInvoice,
				EntityID:     &entityID,
				EmployeeID:   admins[j].ID,
				ScheduledFor: now,
				Frequency:    database.FrequencyOnce,
				Metadata:     checkMetadata(checkInvoiceUpcoming),
				IsActive:     true,
			}
			if err := d.db.Create(&sn).Error; err != nil {
				log.Printf("Failed to schedule invoice notification for invoice %d: %v", invoice.ID, err)
				continue
			}
		}
		created++
	}

	return created, nil
}

func (d *Dispatcher) createTaskNotification(task *database.Task, check, title, message, priority string, now time.Time) bool {
	entityID := task.ID
	sn := database.ScheduledNotification{
		Title:        title,
		Message:      message,
		Type:         database.NotificationTypeTask,
		Priority:     priority,
		EntityType:   database.TargetTask,
		EntityID:     &entityID,
		EmployeeID:   *task.AssignedTo,
		ScheduledFor: now,
		Frequency:    database.FrequencyOnce,
		Metadata:     checkMetadata(check),
		IsActive:     true,
	}
	if err := d.db.Create(&sn).Error; err != nil {
		log.Printf("Failed to schedule task notification for task %d: %v", task.ID, err)
		return false
	}
	return true
}

// hasPendingToday reports whether a record for this entity and check was
// already created today. Executed records count too: one notice per entity
// per day, even when the sweep already delivered it.
func (d *Dispatcher) hasPendingToday(entityType string, entityID uint, check string, now time.Time) bool {
	dayStart := startOfDay(now)

	var count int64
	err := d.db.Model(&database.ScheduledNotification{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Where("metadata LIKE ?", "%"+checkMetadataPattern(check)+"%").
		Where("created_at >= ?", dayStart).
		Count(&count).Error
	if err != nil {
		log.Printf("Idempotency check failed for %s %d: %v", entityType, entityID, err)
		// on doubt, skip creation rather than risk a duplicate
		return true
	}
	return count > 0
}

func checkMetadata(check string) string {
	raw, _ := json.Marshal(map[string]string{"check": check})
	return string(raw)
}

func checkMetadataPattern(check string) string {
	return fmt.Sprintf("%q:%q", "check", check)
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

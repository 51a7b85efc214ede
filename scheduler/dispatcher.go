package scheduler

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"gestionempresa/database"
)

// Dispatcher converts due scheduled notifications into live ones and runs the
// trigger-condition producers. All coordination goes through per-record state
// in the store; runs may overlap in time, which the idempotency checks and
// the executed flag are there to tolerate.
type Dispatcher struct {
	db *gorm.DB
}

// NewDispatcher creates a Dispatcher on top of the given database
func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{db: db}
}

// DispatchDue delivers every pending scheduled notification whose time has
// come. A failure on one record is logged and skipped so the rest of the
// batch still goes out; the failed record stays unexecuted and is retried on
// the next tick (at-least-once). Returns the number dispatched.
func (d *Dispatcher) DispatchDue() (int, error) {
	now := time.Now()

	var due []database.ScheduledNotification
	if err := d.db.
		Where("scheduled_for <= ? AND executed = ? AND is_active = ?", now, false, true).
		Find(&due).Error; err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range due {
		if err := d.dispatchOne(&due[i], now); err != nil {
			log.Printf("Failed to dispatch scheduled notification %d: %v", due[i].ID, err)
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

// dispatchOne delivers a single record. The record is marked executed only
// after its live notification row exists and, for recurring frequencies, its
// successor record is persisted; a failure in either write leaves the record
// pending so the whole unit is retried next sweep. Retrying after a partial
// failure can redeliver the notification, which the at-least-once model
// tolerates; it never silently drops the recurrence chain.
func (d *Dispatcher) dispatchOne(sn *database.ScheduledNotification, now time.Time) error {
	notification := database.Notification{
		EmployeeID: sn.EmployeeID,
		Title:      sn.Title,
		Message:    sn.Message,
		Type:       sn.Type,
		Priority:   sn.Priority,
		EntityType: sn.EntityType,
		EntityID:   sn.EntityID,
		Metadata:   scheduleMarker(sn),
	}
	if err := d.db.Create(&notification).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{
		"executed":    true,
		"executed_at": now,
	}
	if sn.Frequency != database.FrequencyOnce {
		next := NextOccurrence(sn.ScheduledFor, sn.Frequency)
		updates["next_execution"] = next

		// never reuse the dispatched record for the next cycle
		successor := database.ScheduledNotification{
			Title:        sn.Title,
			Message:      sn.Message,
			Type:         sn.Type,
			Priority:     sn.Priority,
			EntityType:   sn.EntityType,
			EntityID:     sn.EntityID,
			EmployeeID:   sn.EmployeeID,
			ScheduledFor: next,
			Frequency:    sn.Frequency,
			Metadata:     sn.Metadata,
			IsActive:     true,
		}
		if err := d.db.Create(&successor).Error; err != nil {
			return err
		}
	}

	return d.db.Model(sn).Updates(updates).Error
}

// Cleanup purges executed records older than the retention window and
// inactive past-due records that never fired. Returns the number removed.
func (d *Dispatcher) Cleanup() (int64, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -30)

	result := d.db.Unscoped().
		Where("(executed = ? AND executed_at < ?) OR (is_active = ? AND executed = ? AND scheduled_for < ?)",
			true, cutoff, false, false, now).
		Delete(&database.ScheduledNotification{})
	return result.RowsAffected, result.Error
}

// scheduleMarker merges an origin marker into the record's metadata so the
// delivered notification can be traced back to its schedule.
func scheduleMarker(sn *database.ScheduledNotification) string {
	meta := map[string]interface{}{}
	if sn.Metadata != "" {
		if err := json.Unmarshal([]byte(sn.Metadata), &meta); err != nil {
			meta = map[string]interface{}{"raw": sn.Metadata}
		}
	}
	meta["from_schedule"] = true
	meta["scheduled_notification_id"] = sn.ID

	raw, err := json.Marshal(meta)
	if err != nil {
		return sn.Metadata
	}
	return string(raw)
}

package audit

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"gestionempresa/database"
)

// Actor identifies who performed an audited action. A nil ID with
// Name=database.SystemActorName marks automated jobs.
type Actor struct {
	ID        *uint
	Name      string
	IPAddress string
	UserAgent string
}

// SystemActor returns the actor used by cron jobs and other automated writers.
func SystemActor() Actor {
	return Actor{Name: database.SystemActorName}
}

// Recorder is the audit write path. It only ever appends; existing entries are
// never updated or deleted here.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a Recorder on top of the given database
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record persists one audit entry. A persistence error propagates to the
// caller; the triggering business write is not rolled back on audit failure
// (fail-open), so callers log and continue.
func (r *Recorder) Record(actor Actor, action, description, targetType string, targetID *uint, previousData, newData map[string]interface{}, module string) (*database.AuditLog, error) {
	entry := database.AuditLog{
		UserID:       actor.ID,
		UserName:     actor.Name,
		Action:       action,
		Description:  description,
		TargetType:   targetType,
		TargetID:     targetID,
		PreviousData: encodeSnapshot(previousData),
		NewData:      encodeSnapshot(newData),
		Module:       module,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		CreatedAt:    time.Now(),
	}

	if err := r.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecordIntent persists the audit entry described by an Intent produced by
// CreateWithAudit or UpdateWithAudit. A nil intent records nothing.
func (r *Recorder) RecordIntent(actor Actor, intent *Intent, targetType string, targetID *uint, module string) (*database.AuditLog, error) {
	if intent == nil {
		return nil, nil
	}
	return r.Record(actor, intent.Action, intent.Description, targetType, targetID, intent.PreviousData, intent.NewData, module)
}

func encodeSnapshot(snapshot map[string]interface{}) string {
	if snapshot == nil {
		return ""
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return ""
	}
	return string(raw)
}

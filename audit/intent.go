package audit

import (
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"gestionempresa/database"
)

// Intent describes the audit consequence of one mutation. It is produced
// alongside the mutation result and consumed by Recorder.RecordIntent; the
// mutation itself never depends on it, so a failed audit write cannot undo
// the business write.
type Intent struct {
	Action        string                 `json:"action"`
	Description   string                 `json:"description"`
	ChangedFields []string               `json:"changed_fields"`
	PreviousData  map[string]interface{} `json:"previous_data,omitempty"`
	NewData       map[string]interface{} `json:"new_data,omitempty"`
}

// CreateWithAudit persists a new record and returns the creation intent.
func CreateWithAudit(db *gorm.DB, record interface{}, targetType string) (*Intent, error) {
	if err := db.Create(record).Error; err != nil {
		return nil, err
	}

	return &Intent{
		Action:        database.ActionCreate,
		Description:   fmt.Sprintf("Creación de %s", targetType),
		ChangedFields: []string{},
		NewData:       Sanitize(record),
	}, nil
}

// UpdateWithAudit loads the current state of the record identified by id,
// applies patch, and returns the intent describing what changed. The before
// snapshot is captured here explicitly instead of being smuggled through the
// record between hooks. record must be a non-nil pointer to the model struct
// and holds the refreshed row on return.
//
// When nothing observable changed the returned intent is nil: there is no
// audit entry to write for a no-op update.
func UpdateWithAudit(db *gorm.DB, record interface{}, id uint, patch map[string]interface{}, targetType string) (*Intent, error) {
	before := map[string]interface{}{}
	beforePtr := newOfSameType(record)
	err := db.First(beforePtr, id).Error
	switch {
	case err == nil:
		before = Sanitize(beforePtr)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// target absent, before-snapshot stays empty
	default:
		return nil, err
	}

	if err := db.Model(record).Where("id = ?", id).Updates(patch).Error; err != nil {
		return nil, err
	}
	if err := db.First(record, id).Error; err != nil {
		return nil, err
	}

	after := Sanitize(record)
	changed := ChangedFields(before, after)
	if len(changed) == 0 {
		return nil, nil
	}

	intent := &Intent{
		Action:        database.ActionUpdate,
		Description:   fmt.Sprintf("Actualización de %s #%d", targetType, id),
		ChangedFields: changed,
		PreviousData:  before,
		NewData:       after,
	}
	applyTransitions(intent, targetType, before, after)
	return intent, nil
}

// DeleteWithAudit removes the record identified by id and returns a deletion
// intent carrying its last known state.
func DeleteWithAudit(db *gorm.DB, record interface{}, id uint, targetType string) (*Intent, error) {
	if err := db.First(record, id).Error; err != nil {
		return nil, err
	}
	before := Sanitize(record)

	if err := db.Delete(record, id).Error; err != nil {
		return nil, err
	}

	return &Intent{
		Action:        database.ActionDelete,
		Description:   fmt.Sprintf("Eliminación de %s #%d", targetType, id),
		ChangedFields: []string{},
		PreviousData:  before,
	}, nil
}

// Transition detectors. They refine the action kind and description of an
// update intent when specific field transitions are present; the underlying
// audit write and its changed-field list are never suppressed. Ordered from
// most to least specific, first match wins.

var dateFields = []string{"start_date", "end_date", "due_date", "next_follow_up", "issue_date", "scheduled_for"}

var valueFields = []string{"amount", "total", "tax", "budget"}

func applyTransitions(intent *Intent, targetType string, before, after map[string]interface{}) {
	changed := func(field string) bool {
		for _, name := range intent.ChangedFields {
			if name == field {
				return true
			}
		}
		return false
	}

	switch {
	case changed("status"):
		intent.Action = database.ActionStatusChange
		intent.Description = fmt.Sprintf("Cambio de estado de %s: %v a %v", targetType, before["status"], after["status"])
	case changed("assigned_to") || changed("manager_id"):
		intent.Action = database.ActionAssign
		intent.Description = fmt.Sprintf("Asignación de %s actualizada", targetType)
	case changed("progress"):
		intent.Action = database.ActionProgressUpdate
		intent.Description = fmt.Sprintf("Progreso de %s actualizado a %v", targetType, after["progress"])
	case anyChanged(changed, dateFields):
		intent.Action = database.ActionDatesUpdate
		intent.Description = fmt.Sprintf("Fechas de %s actualizadas", targetType)
	case anyChanged(changed, valueFields):
		intent.Action = database.ActionValueUpdate
		intent.Description = fmt.Sprintf("Valores de %s actualizados", targetType)
	}
}

func anyChanged(changed func(string) bool, fields []string) bool {
	for _, field := range fields {
		if changed(field) {
			return true
		}
	}
	return false
}

func newOfSameType(record interface{}) interface{} {
	t := reflect.TypeOf(record)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

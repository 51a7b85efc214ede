package audit

import (
	"encoding/json"
)

// sensitiveFields are removed from every snapshot before it is stored or
// diffed. Timestamps managed by the ORM are stripped too, otherwise every
// update would report them as changed fields.
var sensitiveFields = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"old_password":  {},
	"new_password":  {},
	"token":         {},
	"reset_token":   {},
	"secret":        {},
	"api_key":       {},
	"created_at":    {},
	"updated_at":    {},
	"deleted_at":    {},
	// gorm.Model fields carry no json tags and marshal in CamelCase
	"CreatedAt": {},
	"UpdatedAt": {},
	"DeletedAt": {},
}

// Sanitize converts a record into a plain map safe to store as audit payload
// or to compare with ChangedFields. Sensitive and ORM-internal fields are
// removed, and the JSON round trip flattens live references into comparable
// values. A nil record yields an empty map, never an error.
func Sanitize(record interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	if record == nil {
		return out
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}

	for key := range out {
		if _, ok := sensitiveFields[key]; ok {
			delete(out, key)
		}
	}

	return out
}

package audit

import (
	"encoding/json"
	"sort"
)

// ChangedFields compares two sanitized snapshots and returns the names of the
// top-level fields whose values differ, in ascending name order. Object-valued
// fields are compared by their canonical JSON encoding, so key order inside
// nested objects does not produce false positives. Nil snapshots are treated
// as empty records; identical snapshots yield an empty slice.
func ChangedFields(before, after map[string]interface{}) []string {
	changed := []string{}

	seen := map[string]struct{}{}
	for key := range before {
		seen[key] = struct{}{}
	}
	for key := range after {
		seen[key] = struct{}{}
	}

	for key := range seen {
		if stableStringify(before[key]) != stableStringify(after[key]) {
			changed = append(changed, key)
		}
	}

	sort.Strings(changed)
	return changed
}

// stableStringify produces a canonical JSON encoding of a value. Map keys are
// emitted in sorted order by encoding/json, which is what makes the
// comparison order-insensitive for nested objects.
func stableStringify(value interface{}) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

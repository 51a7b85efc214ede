package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangedFields(t *testing.T) {
	tests := []struct {
		name   string
		before map[string]interface{}
		after  map[string]interface{}
		want   []string
	}{
		{
			name:   "identical snapshots",
			before: map[string]interface{}{"name": "Proyecto A", "status": "activo"},
			after:  map[string]interface{}{"name": "Proyecto A", "status": "activo"},
			want:   []string{},
		},
		{
			name:   "single field changed",
			before: map[string]interface{}{"name": "Proyecto A", "status": "activo"},
			after:  map[string]interface{}{"name": "Proyecto A", "status": "finalizado"},
			want:   []string{"status"},
		},
		{
			name:   "multiple fields sorted",
			before: map[string]interface{}{"status": "activo", "budget": 1000.0, "name": "A"},
			after:  map[string]interface{}{"status": "en_pausa", "budget": 2000.0, "name": "A"},
			want:   []string{"budget", "status"},
		},
		{
			name:   "field added",
			before: map[string]interface{}{"name": "A"},
			after:  map[string]interface{}{"name": "A", "manager_id": 3.0},
			want:   []string{"manager_id"},
		},
		{
			name:   "field removed",
			before: map[string]interface{}{"name": "A", "manager_id": 3.0},
			after:  map[string]interface{}{"name": "A"},
			want:   []string{"manager_id"},
		},
		{
			name: "nested object key order does not matter",
			before: map[string]interface{}{
				"metadata": map[string]interface{}{"a": 1.0, "b": 2.0},
			},
			after: map[string]interface{}{
				"metadata": map[string]interface{}{"b": 2.0, "a": 1.0},
			},
			want: []string{},
		},
		{
			name: "nested object value change detected",
			before: map[string]interface{}{
				"metadata": map[string]interface{}{"a": 1.0, "b": 2.0},
			},
			after: map[string]interface{}{
				"metadata": map[string]interface{}{"a": 1.0, "b": 3.0},
			},
			want: []string{"metadata"},
		},
		{
			name:   "nil before treated as empty",
			before: nil,
			after:  map[string]interface{}{"name": "A"},
			want:   []string{"name"},
		},
		{
			name:   "both nil",
			before: nil,
			after:  nil,
			want:   []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ChangedFields(tc.before, tc.after)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChangedFieldsNeverNil(t *testing.T) {
	got := ChangedFields(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

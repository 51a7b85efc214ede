package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gestionempresa/database"
)

func TestNextOccurrence(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		last      time.Time
		frequency string
		want      time.Time
	}{
		{
			name:      "daily adds one day",
			last:      base,
			frequency: database.FrequencyDaily,
			want:      time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC),
		},
		{
			name:      "weekly adds seven days",
			last:      base,
			frequency: database.FrequencyWeekly,
			want:      time.Date(2026, 3, 17, 9, 30, 0, 0, time.UTC),
		},
		{
			name:      "monthly keeps day and clock",
			last:      base,
			frequency: database.FrequencyMonthly,
			want:      time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps Jan 31 to Feb 28",
			last:      time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC),
			frequency: database.FrequencyMonthly,
			want:      time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps Jan 31 to Feb 29 on leap year",
			last:      time.Date(2028, 1, 31, 8, 0, 0, 0, time.UTC),
			frequency: database.FrequencyMonthly,
			want:      time.Date(2028, 2, 29, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps May 31 to Jun 30",
			last:      time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC),
			frequency: database.FrequencyMonthly,
			want:      time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly across year boundary",
			last:      time.Date(2026, 12, 15, 12, 0, 0, 0, time.UTC),
			frequency: database.FrequencyMonthly,
			want:      time.Date(2027, 1, 15, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextOccurrence(tc.last, tc.frequency))
		})
	}
}

func TestNextOccurrenceUnknownFrequencyIsUnchanged(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, base, NextOccurrence(base, "unknown"))
	assert.Equal(t, base, NextOccurrence(base, database.FrequencyOnce))
}

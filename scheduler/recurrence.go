package scheduler

import (
	"time"

	"gestionempresa/database"
)

// NextOccurrence returns the next fire time after last for a recurring
// frequency. Daily adds one day, weekly seven; monthly keeps the day of month,
// clamped to the last valid day when the target month is shorter (the 31st
// becomes the 28th/29th in February). An unknown or "once" frequency returns
// last unchanged.
func NextOccurrence(last time.Time, frequency string) time.Time {
	switch frequency {
	case database.FrequencyDaily:
		return last.AddDate(0, 0, 1)
	case database.FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case database.FrequencyMonthly:
		return addMonthClamped(last)
	}
	return last
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	// first day of the target month, then clamp the day
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := daysInMonth(firstOfNext.Year(), firstOfNext.Month())
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, hour, minute, second, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day zero of the following month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

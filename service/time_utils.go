package service

import (
	"time"
)

// DayBounds returns the UTC day containing t as [00:00, next 00:00)
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns the study week containing t as [weekStart 00:00, +7 days)
func WeekBounds(t time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	dayStart, _ := DayBounds(t)
	offset := (int(dayStart.Weekday()) - int(weekStart) + 7) % 7
	start := dayStart.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

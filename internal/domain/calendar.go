package domain

import "time"

// CalendarFields is the per-date breakdown stored on every demand history row.
type CalendarFields struct {
	Year       int
	Month      int
	WeekOfYear int
	DayOfWeek  int
	Quarter    int
}

// CalendarFor derives the calendar breakdown for a demand date. The week
// number counts days since Jan 1 offset by the weekday of Jan 1, ceil-divided
// by 7, so week 1 always contains Jan 1 regardless of weekday.
func CalendarFor(date time.Time) CalendarFields {
	jan1 := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, date.Location())
	offset := int(jan1.Weekday())
	week := (date.YearDay() + offset + 6) / 7

	return CalendarFields{
		Year:       date.Year(),
		Month:      int(date.Month()),
		WeekOfYear: week,
		DayOfWeek:  int(date.Weekday()),
		Quarter:    (int(date.Month())-1)/3 + 1,
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarFor(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want CalendarFields
	}{
		{
			name: "new year's day starts week one",
			date: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: CalendarFields{Year: 2026, Month: 1, WeekOfYear: 1, DayOfWeek: 4, Quarter: 1},
		},
		{
			name: "mid march tuesday",
			date: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
			want: CalendarFields{Year: 2026, Month: 3, WeekOfYear: 11, DayOfWeek: 2, Quarter: 1},
		},
		{
			name: "independence day falls in third quarter",
			date: time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
			want: CalendarFields{Year: 2026, Month: 7, WeekOfYear: 27, DayOfWeek: 6, Quarter: 3},
		},
		{
			name: "leap day",
			date: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
			want: CalendarFields{Year: 2024, Month: 2, WeekOfYear: 9, DayOfWeek: 4, Quarter: 1},
		},
		{
			name: "last day of the year",
			date: time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: CalendarFields{Year: 2026, Month: 12, WeekOfYear: 53, DayOfWeek: 4, Quarter: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalendarFor(tt.date))
		})
	}
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysOverdue(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name       string
		dueDate    time.Time
		returnedAt time.Time
		want       int
	}{
		{
			name:       "three days late",
			dueDate:    date(2024, time.January, 1),
			returnedAt: date(2024, time.January, 4),
			want:       3,
		},
		{
			name:       "on the due date",
			dueDate:    date(2024, time.January, 1),
			returnedAt: date(2024, time.January, 1),
			want:       0,
		},
		{
			name:       "late in the evening of the due date",
			dueDate:    date(2024, time.January, 1),
			returnedAt: time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC),
			want:       0,
		},
		{
			name:       "early return clamps to zero",
			dueDate:    date(2024, time.January, 10),
			returnedAt: date(2024, time.January, 4),
			want:       0,
		},
		{
			name:       "one minute past midnight counts a full day",
			dueDate:    date(2024, time.January, 1),
			returnedAt: time.Date(2024, time.January, 2, 0, 1, 0, 0, time.UTC),
			want:       1,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, DaysOverdue(tt.dueDate, tt.returnedAt))
		})
	}
}

func TestComputeFine(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name       string
		dueDate    time.Time
		returnedAt time.Time
		ratePerDay float64
		want       float64
	}{
		{
			name:       "three days at 1.00",
			dueDate:    date(2024, time.January, 1),
			returnedAt: date(2024, time.January, 4),
			ratePerDay: 1.00,
			want:       3.00,
		},
		{
			name:       "three days at default rate",
			dueDate:    date(2024, time.January, 1),
			returnedAt: date(2024, time.January, 4),
			ratePerDay: 0.50,
			want:       1.50,
		},
		{
			name:       "early return is free",
			dueDate:    date(2024, time.January, 10),
			returnedAt: date(2024, time.January, 4),
			ratePerDay: 1.00,
			want:       0.00,
		},
		{
			name:       "on time is free",
			dueDate:    date(2024, time.January, 1),
			returnedAt: date(2024, time.January, 1),
			ratePerDay: 0.50,
			want:       0.00,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, ComputeFine(tt.dueDate, tt.returnedAt, tt.ratePerDay), 1e-9)
		})
	}
}

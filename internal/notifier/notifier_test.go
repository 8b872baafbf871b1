package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/versewell/library-service/pkg/kafka"
)

func TestRenderMessage(t *testing.T) {
	t.Parallel()
	dueDate := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	var tests = []struct {
		name string
		typ  kafka.NotificationType
		now  time.Time
		want string
	}{
		{
			name: "due soon",
			typ:  kafka.NotifyDueSoon,
			now:  time.Date(2024, time.January, 13, 9, 0, 0, 0, time.UTC),
			want: "Reminder: Your book 'The Go Programming Language' is due in 2 days. Please return it to avoid late fees.",
		},
		{
			name: "overdue with accrued fine",
			typ:  kafka.NotifyOverdue,
			now:  time.Date(2024, time.January, 19, 0, 0, 0, 0, time.UTC),
			want: "Your book 'The Go Programming Language' is overdue by 4 days. Current fine: $2.00",
		},
		{
			name: "overdue counts whole days, not hours",
			typ:  kafka.NotifyOverdue,
			now:  time.Date(2024, time.January, 16, 23, 59, 0, 0, time.UTC),
			want: "Your book 'The Go Programming Language' is overdue by 1 days. Current fine: $0.50",
		},
		{
			name: "overdue clamps negative days",
			typ:  kafka.NotifyOverdue,
			now:  time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			want: "Your book 'The Go Programming Language' is overdue by 0 days. Current fine: $0.00",
		},
		{
			name: "renewal approved",
			typ:  kafka.NotifyRenewalApproved,
			now:  time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			want: "Your renewal request for 'The Go Programming Language' has been approved. New due date: January 15, 2024",
		},
		{
			name: "reminder",
			typ:  kafka.NotifyReminder,
			now:  time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			want: "Just a reminder that your book 'The Go Programming Language' is due on January 15, 2024.",
		},
		{
			name: "unknown type falls back",
			typ:  kafka.NotificationType("unknown"),
			now:  time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			want: "Notification about your borrowed book: 'The Go Programming Language'",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RenderMessage(tt.typ, "The Go Programming Language", dueDate, 0.50, tt.now)
			require.Equal(t, tt.want, got)
		})
	}
}

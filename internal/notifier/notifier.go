// Package notifier consumes borrowing lifecycle events and delivers
// reminders per the user's notification preferences.
package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/repository"
	"github.com/versewell/library-service/internal/service"
	"github.com/versewell/library-service/pkg/kafka"
)

// Sender delivers a rendered message over one channel. Both senders below
// are stubs; delivery outcome is recorded but never affects borrowing state.
type Sender interface {
	Send(ctx context.Context, recipient, message string) error
}

type emailSender struct{ log *zap.Logger }

func (s *emailSender) Send(_ context.Context, recipient, message string) error {
	s.log.Info("email sent", zap.String("to", recipient), zap.String("message", message))
	return nil
}

type smsSender struct{ log *zap.Logger }

func (s *smsSender) Send(_ context.Context, recipient, message string) error {
	s.log.Info("sms sent", zap.String("to", recipient), zap.String("message", message))
	return nil
}

type Notifier struct {
	repo       repository.Repository
	email      Sender
	sms        Sender
	finePerDay float64
	log        *zap.Logger
}

func New(repo repository.Repository, finePerDay float64, log *zap.Logger) *Notifier {
	log = log.Named("notifier")
	return &Notifier{
		repo:       repo,
		email:      &emailSender{log: log},
		sms:        &smsSender{log: log},
		finePerDay: finePerDay,
		log:        log,
	}
}

// Handle processes one lifecycle event: render, log as pending, attempt
// delivery, mark sent or failed.
func (n *Notifier) Handle(ctx context.Context, event kafka.EventNotify) error {
	info, err := n.repo.NotifyContext(ctx, event.BorrowingID)
	if err != nil {
		return err
	}

	message := RenderMessage(event.Type, info.BookTitle, info.DueDate, n.finePerDay, time.Now())

	logID, err := n.repo.InsertNotificationLog(ctx, info.UserID, event.BorrowingID, string(event.Type), message, "pending")
	if err != nil {
		return err
	}

	sent := false
	if info.EmailNotifications {
		if err := n.email.Send(ctx, info.UserEmail, message); err == nil {
			sent = true
		} else {
			n.log.Warn("email delivery", zap.Error(err))
		}
	}
	if info.SMSNotifications && info.UserPhone.Valid {
		if err := n.sms.Send(ctx, info.UserPhone.String, message); err == nil {
			sent = true
		} else {
			n.log.Warn("sms delivery", zap.Error(err))
		}
	}

	status := "failed"
	if sent {
		status = "sent"
	}
	return n.repo.MarkNotificationLog(ctx, logID, status)
}

// RenderMessage produces the user-facing text for a notification type.
func RenderMessage(t kafka.NotificationType, bookTitle string, dueDate time.Time, finePerDay float64, now time.Time) string {
	switch t {
	case kafka.NotifyDueSoon:
		return fmt.Sprintf("Reminder: Your book '%s' is due in 2 days. Please return it to avoid late fees.", bookTitle)
	case kafka.NotifyOverdue:
		daysOverdue := service.DaysOverdue(dueDate, now)
		fine := service.ComputeFine(dueDate, now, finePerDay)
		return fmt.Sprintf("Your book '%s' is overdue by %d days. Current fine: $%.2f", bookTitle, daysOverdue, fine)
	case kafka.NotifyRenewalApproved:
		return fmt.Sprintf("Your renewal request for '%s' has been approved. New due date: %s",
			bookTitle, dueDate.Format("January 2, 2006"))
	case kafka.NotifyReminder:
		return fmt.Sprintf("Just a reminder that your book '%s' is due on %s.",
			bookTitle, dueDate.Format("January 2, 2006"))
	default:
		return fmt.Sprintf("Notification about your borrowed book: '%s'", bookTitle)
	}
}

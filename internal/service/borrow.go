package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/pkg/kafka"
)

// Borrow moves one copy of a book to the user. Reservation of the copy and
// creation of the borrowing row happen in one repository transaction.
func (s *Service) Borrow(ctx context.Context, userID, bookID, loanDays int) (model.Borrowing, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.Borrowing{}, err
	}
	if !user.IsActive {
		return model.Borrowing{}, errs.ErrInactiveUser
	}

	if _, err := s.repo.FindActiveBorrowing(ctx, userID, bookID); err == nil {
		return model.Borrowing{}, errs.ErrAlreadyBorrowed
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.Borrowing{}, err
	}

	if loanDays <= 0 {
		loanDays = s.policy.LoanDays
	}
	brw, err := s.repo.CreateBorrowing(ctx, userID, bookID, loanDays)
	if err != nil {
		return model.Borrowing{}, err
	}
	s.log.Info("book borrowed",
		zap.Int("user_id", userID), zap.Int("book_id", bookID),
		zap.Time("due_date", brw.DueDate))
	return brw, nil
}

// Return closes the borrowing, computes the fine under the row lock and
// releases the copy. Returning twice fails with ErrNotBorrowed the second
// time; the copy is released exactly once.
func (s *Service) Return(ctx context.Context, borrowingID int) (model.ReturnReceipt, error) {
	rate := s.policy.FinePerDay
	receipt, err := s.repo.ReturnBorrowing(ctx, borrowingID, func(due, returnedAt time.Time) (float64, int) {
		return ComputeFine(due, returnedAt, rate), DaysOverdue(due, returnedAt)
	})
	if err != nil {
		return model.ReturnReceipt{}, err
	}
	if receipt.DaysOverdue > 0 {
		s.notify(kafka.NotifyOverdue, borrowingID)
	}
	s.log.Info("book returned",
		zap.Int("borrowing_id", borrowingID),
		zap.Float64("fine", receipt.FineAmount), zap.Int("days_overdue", receipt.DaysOverdue))
	return receipt, nil
}

// Renew extends the due date; inventory is untouched, the copy stays with
// the borrower. Only the owner's borrowing is renewed; anyone else's id
// resolves to ErrNotFound.
func (s *Service) Renew(ctx context.Context, userID, borrowingID, extensionDays int) (model.Borrowing, error) {
	if extensionDays <= 0 {
		extensionDays = s.policy.ExtensionDays
	}
	brw, err := s.repo.RenewBorrowing(ctx, userID, borrowingID, extensionDays, s.policy.MaxRenewals)
	if err != nil {
		return model.Borrowing{}, err
	}
	s.notify(kafka.NotifyRenewalApproved, borrowingID)
	return brw, nil
}

// RenewByBook resolves the user's active borrowing for the book and renews
// it, mirroring the renew-by-book flow of the dashboard.
func (s *Service) RenewByBook(ctx context.Context, userID, bookID, extensionDays int) (model.Borrowing, error) {
	brw, err := s.repo.FindActiveBorrowing(ctx, userID, bookID)
	if err != nil {
		return model.Borrowing{}, err
	}
	return s.Renew(ctx, userID, brw.ID, extensionDays)
}

func (s *Service) ListBorrowings(ctx context.Context, userID int) ([]model.BorrowingView, error) {
	return s.repo.ListBorrowings(ctx, userID)
}

func (s *Service) ListBorrowingsAdmin(ctx context.Context) ([]model.BorrowingView, error) {
	return s.repo.ListBorrowingsAdmin(ctx)
}

// SendReminders verifies the user actually has overdue borrowings and emits
// a reminder event for each one.
func (s *Service) SendReminders(ctx context.Context, userID int) ([]model.BorrowingView, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.ErrInactiveUser
	}
	overdue, err := s.repo.ListOverdueByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(overdue) == 0 {
		return nil, errs.ErrNoOverdueBooks
	}
	for _, brw := range overdue {
		s.notify(kafka.NotifyReminder, brw.ID)
	}
	return overdue, nil
}

// SweepDueSoon emits a due_soon event for every borrowing due in two days.
// The app runs it once a day.
func (s *Service) SweepDueSoon(ctx context.Context) error {
	const dueSoonDays = 2
	items, err := s.repo.ListDueSoon(ctx, dueSoonDays)
	if err != nil {
		return err
	}
	for _, brw := range items {
		s.notify(kafka.NotifyDueSoon, brw.ID)
	}
	if len(items) > 0 {
		s.log.Info("due soon sweep", zap.Int("count", len(items)))
	}
	return nil
}

func (s *Service) ListNotifications(ctx context.Context, userID int) ([]model.NotificationLog, error) {
	const limit = 20
	return s.repo.ListNotificationLogs(ctx, userID, limit)
}

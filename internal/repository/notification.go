package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
)

// NotifyInfo is everything the notifier needs to render and route a message
// for one borrowing.
type NotifyInfo struct {
	UserID             int            `db:"user_id"`
	UserEmail          string         `db:"email"`
	UserPhone          sql.NullString `db:"phone"`
	EmailNotifications bool           `db:"email_notifications"`
	SMSNotifications   bool           `db:"sms_notifications"`
	BookTitle          string         `db:"book_title"`
	DueDate            time.Time      `db:"due_date"`
	Status             string         `db:"status"`
}

func (r *repository) NotifyContext(ctx context.Context, borrowingID int) (NotifyInfo, error) {
	q := `
select b.user_id, u.email, u.phone, u.email_notifications, u.sms_notifications,
	bk.title as book_title, b.due_date, b.status
from borrowings b
join users u on b.user_id = u.id
join books bk on b.book_id = bk.id
where b.id = $1`
	var info NotifyInfo
	if err := r.db.GetContext(ctx, &info, q, borrowingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotifyInfo{}, errs.ErrNotFound
		}
		return NotifyInfo{}, mapPgError(err)
	}
	return info, nil
}

func (r *repository) InsertNotificationLog(ctx context.Context, userID, borrowingID int, notifyType, message, status string) (int, error) {
	q, args, err := qb.Insert(notifyLogsTableName).
		Columns("user_id", "borrowing_id", "notification_type", "message", "status").
		Values(userID, borrowingID, notifyType, message, status).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *repository) MarkNotificationLog(ctx context.Context, logID int, status string) error {
	q, args, err := qb.Update(notifyLogsTableName).
		Set("status", status).
		Set("sent_at", sq.Expr("now()")).
		Where(sq.Eq{"id": logID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return mapPgError(err)
}

func (r *repository) ListNotificationLogs(ctx context.Context, userID, limit int) ([]model.NotificationLog, error) {
	q, args, err := qb.Select("id", "user_id", "borrowing_id", "notification_type", "message", "status", "sent_at").
		From(notifyLogsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("sent_at DESC NULLS LAST", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var logs []model.NotificationLog
	if err := r.db.SelectContext(ctx, &logs, q, args...); err != nil {
		return nil, mapPgError(err)
	}
	return logs, nil
}

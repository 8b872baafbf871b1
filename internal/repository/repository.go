package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
)

type Repository interface {
	// books
	GetBook(ctx context.Context, bookID int) (model.Book, error)
	GetBookByGoogleID(ctx context.Context, googleBookID string) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) ([]model.Book, error)
	ListBooksAdmin(ctx context.Context) ([]model.BookStats, error)
	ImportBook(ctx context.Context, req model.ImportBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, bookID int, fields map[string]any) error
	DeleteBook(ctx context.Context, bookID int) error
	AdjustTotalCopies(ctx context.Context, bookID, totalCopies int) (model.Book, error)

	// borrowings
	CreateBorrowing(ctx context.Context, userID, bookID int, loanDays int) (model.Borrowing, error)
	ReturnBorrowing(ctx context.Context, borrowingID int, fine FinePolicy) (model.ReturnReceipt, error)
	RenewBorrowing(ctx context.Context, userID, borrowingID, extensionDays, maxRenewals int) (model.Borrowing, error)
	GetBorrowing(ctx context.Context, borrowingID int) (model.Borrowing, error)
	FindActiveBorrowing(ctx context.Context, userID, bookID int) (model.Borrowing, error)
	ListDueSoon(ctx context.Context, withinDays int) ([]model.Borrowing, error)
	ListBorrowings(ctx context.Context, userID int) ([]model.BorrowingView, error)
	ListBorrowingsAdmin(ctx context.Context) ([]model.BorrowingView, error)
	ListOverdueByUser(ctx context.Context, userID int) ([]model.BorrowingView, error)

	// users / admins
	CreateUser(ctx context.Context, req model.CreateUserRequest, passwordHash string) (model.User, error)
	GetUser(ctx context.Context, userID int) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, userID int, req model.UpdateUserRequest) error
	UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) error
	DeactivateUser(ctx context.Context, userID int) error
	GetAdminByEmail(ctx context.Context, email string) (model.Admin, error)
	GetAdmin(ctx context.Context, adminID int) (model.Admin, error)

	// notifications
	NotifyContext(ctx context.Context, borrowingID int) (NotifyInfo, error)
	InsertNotificationLog(ctx context.Context, userID, borrowingID int, notifyType, message, status string) (int, error)
	MarkNotificationLog(ctx context.Context, logID int, status string) error
	ListNotificationLogs(ctx context.Context, userID, limit int) ([]model.NotificationLog, error)

	// stats
	Stats(ctx context.Context) (model.Stats, error)
}

// FinePolicy computes the fine and overdue day count for a due date at
// return time. Evaluated inside the return transaction with the row locked.
type FinePolicy func(dueDate, returnedAt time.Time) (fine float64, daysOverdue int)

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName       = `users`
	adminsTableName      = `admins`
	booksTableName       = `books`
	borrowingsTableName  = `borrowings`
	notifyLogsTableName  = `notification_logs`
	activeBorrowUniqueIx = `borrowings_active_user_book_ux`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// mapPgError converts transient lock and serialization failures to ErrBusy
// so callers can surface a retryable status.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return errs.ErrBusy
		}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

// inTx runs fn in a transaction, rolling back on any error.
func (r *repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapPgError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapPgError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapPgError(err)
	}
	return nil
}

const bookColumns = `id, google_book_id, title, authors, isbn, cover_url, description,
	pages, published_year, categories, preview_link, info_link,
	total_copies, available_copies, created_at`

func (r *repository) GetBook(ctx context.Context, bookID int) (model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, mapPgError(err)
	}
	return book, nil
}

func (r *repository) GetBookByGoogleID(ctx context.Context, googleBookID string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"google_book_id": googleBookID}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, mapPgError(err)
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, page, size int) ([]model.Book, error) {
	q := qb.Select(bookColumns).
		From(booksTableName).
		OrderBy("created_at DESC")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, mapPgError(err)
	}
	return books, nil
}

func (r *repository) ImportBook(ctx context.Context, req model.ImportBookRequest) (model.Book, error) {
	// Re-importing a known catalog volume adds a copy rather than a row.
	q := `
insert into books (google_book_id, title, authors, isbn, cover_url, description,
	pages, published_year, categories, preview_link, info_link,
	total_copies, available_copies)
values ($1, $2, $3, nullif($4, ''), nullif($5, ''), nullif($6, ''),
	nullif($7, 0), nullif($8, 0), $9, nullif($10, ''), nullif($11, ''), 1, 1)
on conflict (google_book_id) do update
	set total_copies = books.total_copies + 1,
	    available_copies = books.available_copies + 1
returning ` + bookColumns

	var book model.Book
	err := r.db.GetContext(ctx, &book, q,
		req.GoogleBookID, req.Title, model.StringList(req.Authors), req.ISBN,
		req.CoverURL, req.Description, req.Pages, req.PublishedYear,
		model.StringList(req.Categories), req.PreviewLink, req.InfoLink)
	if err != nil {
		r.log.Error("ImportBook", zap.String("google_book_id", req.GoogleBookID), zap.Error(err))
		return model.Book{}, mapPgError(err)
	}
	return book, nil
}

func (r *repository) UpdateBook(ctx context.Context, bookID int, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	q := qb.Update(booksTableName).Where(sq.Eq{"id": bookID})
	for col, v := range fields {
		q = q.Set(col, v)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteBook(ctx context.Context, bookID int) error {
	query, args, err := qb.Delete(booksTableName).Where(sq.Eq{"id": bookID}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AdjustTotalCopies changes total_copies and recomputes available_copies from
// the count of active borrowings, so admin edits cannot desync the ledger.
func (r *repository) AdjustTotalCopies(ctx context.Context, bookID, totalCopies int) (model.Book, error) {
	var book model.Book
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var total int
		if err := tx.QueryRowContext(ctx,
			`select total_copies from books where id = $1 for update`, bookID).Scan(&total); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		var active int
		if err := tx.QueryRowContext(ctx,
			`select count(*) from borrowings where book_id = $1 and status = 'borrowed'`,
			bookID).Scan(&active); err != nil {
			return err
		}
		if totalCopies < active {
			return errs.ErrInvariantViolation
		}
		q := `
update books
	set total_copies = $2,
	    available_copies = $2 - $3
where id = $1
returning ` + bookColumns
		if err := tx.GetContext(ctx, &book, q, bookID, totalCopies, active); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.Book{}, err
	}
	return book, nil
}

package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
)

const borrowingColumns = `id, borrowing_uid, user_id, book_id, status, borrowed_at,
	due_date, returned_at, fine_amount, renewal_count, renewal_requested, last_renewal_date`

// returnable gates the return transition: only an active borrowing can be
// returned, which makes a second return fail instead of releasing twice.
func returnable(brw model.Borrowing) error {
	if brw.Status != model.StatusBorrowed {
		return errs.ErrNotBorrowed
	}
	return nil
}

// renewable gates the renew transition.
func renewable(brw model.Borrowing, maxRenewals int) error {
	if brw.Status != model.StatusBorrowed {
		return errs.ErrNotBorrowed
	}
	if brw.RenewalCount >= maxRenewals {
		return errs.ErrRenewalLimit
	}
	return nil
}

// CreateBorrowing reserves a copy and creates the borrowing row in one
// transaction. The book row is locked for update so two concurrent borrowers
// cannot both observe the last available copy.
func (r *repository) CreateBorrowing(ctx context.Context, userID, bookID int, loanDays int) (model.Borrowing, error) {
	var brw model.Borrowing
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var available int
		err := tx.QueryRowContext(ctx,
			`select available_copies from books where id = $1 for update`,
			bookID).Scan(&available)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if available <= 0 {
			return errs.ErrNoCopiesAvailable
		}

		q := `
insert into borrowings (borrowing_uid, user_id, book_id, status, borrowed_at, due_date)
values ($1, $2, $3, 'borrowed', now(), current_date + $4)
returning ` + borrowingColumns
		if err := tx.GetContext(ctx, &brw, q, uuid.New(), userID, bookID, loanDays); err != nil {
			if isUniqueViolation(err, activeBorrowUniqueIx) {
				return errs.ErrAlreadyBorrowed
			}
			return err
		}

		_, err = tx.ExecContext(ctx,
			`update books set available_copies = available_copies - 1 where id = $1`,
			bookID)
		return err
	})
	if err != nil {
		return model.Borrowing{}, err
	}
	return brw, nil
}

// ReturnBorrowing flips the borrowing to returned, records the fine and
// releases the copy, all in one transaction. A second return of the same
// borrowing sees status != borrowed and fails with ErrNotBorrowed, so the
// copy is released exactly once.
func (r *repository) ReturnBorrowing(ctx context.Context, borrowingID int, fine FinePolicy) (model.ReturnReceipt, error) {
	var receipt model.ReturnReceipt
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var brw model.Borrowing
		q := `select ` + borrowingColumns + ` from borrowings where id = $1 for update`
		if err := tx.GetContext(ctx, &brw, q, borrowingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if err := returnable(brw); err != nil {
			return err
		}

		var returnedAt sql.NullTime
		if err := tx.QueryRowContext(ctx, `select now()`).Scan(&returnedAt); err != nil {
			return err
		}
		amount, days := fine(brw.DueDate, returnedAt.Time)
		if _, err := tx.ExecContext(ctx, `
update borrowings
	set status = 'returned', returned_at = $2, fine_amount = $3
where id = $1`, borrowingID, returnedAt.Time, amount); err != nil {
			return err
		}

		// releaseCopy: capped so a stray row can never push available past total
		res, err := tx.ExecContext(ctx, `
update books
	set available_copies = available_copies + 1
where id = $1 and available_copies < total_copies`, brw.BookID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			r.log.Error("releaseCopy would exceed total_copies",
				zap.Int("book_id", brw.BookID), zap.Int("borrowing_id", borrowingID))
			return errs.ErrInvariantViolation
		}

		receipt = model.ReturnReceipt{
			BorrowingID: borrowingID,
			FineAmount:  amount,
			DaysOverdue: days,
		}
		return nil
	})
	if err != nil {
		return model.ReturnReceipt{}, err
	}
	return receipt, nil
}

// RenewBorrowing extends the due date without touching inventory; the copy
// stays with the borrower. The row is looked up by id and owner, so renewing
// someone else's borrowing reads as not found.
func (r *repository) RenewBorrowing(ctx context.Context, userID, borrowingID, extensionDays, maxRenewals int) (model.Borrowing, error) {
	var brw model.Borrowing
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		q := `select ` + borrowingColumns + ` from borrowings where id = $1 and user_id = $2 for update`
		if err := tx.GetContext(ctx, &brw, q, borrowingID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		if err := renewable(brw, maxRenewals); err != nil {
			return err
		}

		q = `
update borrowings
	set due_date = due_date + $2,
	    renewal_count = renewal_count + 1,
	    renewal_requested = true,
	    last_renewal_date = now()
where id = $1
returning ` + borrowingColumns
		return tx.GetContext(ctx, &brw, q, borrowingID, extensionDays)
	})
	if err != nil {
		return model.Borrowing{}, err
	}
	return brw, nil
}

func (r *repository) GetBorrowing(ctx context.Context, borrowingID int) (model.Borrowing, error) {
	query, args, err := qb.Select(borrowingColumns).
		From(borrowingsTableName).
		Where(sq.Eq{"id": borrowingID}).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var brw model.Borrowing
	if err := r.db.GetContext(ctx, &brw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, mapPgError(err)
	}
	return brw, nil
}

// ListDueSoon returns active borrowings due in exactly withinDays days,
// so a daily sweep notifies each borrowing once.
func (r *repository) ListDueSoon(ctx context.Context, withinDays int) ([]model.Borrowing, error) {
	q := `select ` + borrowingColumns + `
from borrowings
where status = 'borrowed' and due_date = current_date + $1`
	var items []model.Borrowing
	if err := r.db.SelectContext(ctx, &items, q, withinDays); err != nil {
		return nil, mapPgError(err)
	}
	return items, nil
}

func (r *repository) FindActiveBorrowing(ctx context.Context, userID, bookID int) (model.Borrowing, error) {
	query, args, err := qb.Select(borrowingColumns).
		From(borrowingsTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID, "status": model.StatusBorrowed}).
		OrderBy("borrowed_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var brw model.Borrowing
	if err := r.db.GetContext(ctx, &brw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, mapPgError(err)
	}
	return brw, nil
}

// borrowingViewQuery joins user and book data and derives overdue-ness at
// read time; overdue is never a stored status.
const borrowingViewQuery = `
select b.id, b.borrowing_uid, b.user_id, b.book_id, b.status, b.borrowed_at,
	b.due_date, b.returned_at, b.fine_amount, b.renewal_count,
	b.renewal_requested, b.last_renewal_date,
	u.name as user_name, u.email as user_email,
	bk.title as book_title, bk.authors, bk.cover_url,
	case when b.status = 'borrowed' and b.due_date < current_date
		then 'overdue' else b.status end as display_status,
	greatest(0, current_date - b.due_date)::int as days_overdue
from borrowings b
join users u on b.user_id = u.id
join books bk on b.book_id = bk.id`

func (r *repository) ListBorrowings(ctx context.Context, userID int) ([]model.BorrowingView, error) {
	q := borrowingViewQuery + `
where b.user_id = $1
order by b.borrowed_at desc`
	var items []model.BorrowingView
	if err := r.db.SelectContext(ctx, &items, q, userID); err != nil {
		return nil, mapPgError(err)
	}
	return items, nil
}

// ListBorrowingsAdmin sorts overdue records before all others, then newest
// first, matching the dashboard ordering.
func (r *repository) ListBorrowingsAdmin(ctx context.Context) ([]model.BorrowingView, error) {
	q := borrowingViewQuery + `
order by case when b.status = 'borrowed' and b.due_date < current_date then 1 else 2 end,
	b.borrowed_at desc`
	var items []model.BorrowingView
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, mapPgError(err)
	}
	return items, nil
}

func (r *repository) ListOverdueByUser(ctx context.Context, userID int) ([]model.BorrowingView, error) {
	q := borrowingViewQuery + `
where b.user_id = $1 and b.status = 'borrowed' and b.due_date < current_date
order by b.due_date asc`
	var items []model.BorrowingView
	if err := r.db.SelectContext(ctx, &items, q, userID); err != nil {
		return nil, mapPgError(err)
	}
	return items, nil
}

func (r *repository) ListBooksAdmin(ctx context.Context) ([]model.BookStats, error) {
	q := `
select bk.id, bk.google_book_id, bk.title, bk.authors, bk.isbn, bk.cover_url,
	bk.description, bk.pages, bk.published_year, bk.categories,
	bk.preview_link, bk.info_link, bk.total_copies, bk.available_copies, bk.created_at,
	count(b.id) as total_borrowed,
	count(case when b.status = 'borrowed' then 1 end) as currently_borrowed
from books bk
left join borrowings b on bk.id = b.book_id
group by bk.id
order by bk.created_at desc`
	var items []model.BookStats
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, mapPgError(err)
	}
	return items, nil
}

func (r *repository) Stats(ctx context.Context) (model.Stats, error) {
	q := `
select
	(select count(*) from books) as total_books,
	(select count(*) from users where is_active) as total_users,
	(select count(*) from borrowings) as total_borrowings,
	(select count(*) from borrowings where status = 'borrowed') as active_borrowings,
	(select count(*) from borrowings where status = 'borrowed' and due_date < current_date) as overdue_books,
	(select count(*) from borrowings where status = 'returned') as returned_books`
	var s model.Stats
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.TotalBooks, &s.TotalUsers, &s.TotalBorrowings,
		&s.ActiveBorrowings, &s.OverdueBooks, &s.ReturnedBooks)
	if err != nil {
		return model.Stats{}, mapPgError(err)
	}
	return s, nil
}

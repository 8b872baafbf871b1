package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
)

const userColumns = `id, name, email, password, phone, is_active,
	email_notifications, sms_notifications, profile_photo, created_at`

func (r *repository) CreateUser(ctx context.Context, req model.CreateUserRequest, passwordHash string) (model.User, error) {
	q, args, err := qb.Insert(usersTableName).
		Columns("name", "email", "password", "phone").
		Values(req.Name, req.Email, passwordHash, sql.NullString{String: req.Phone, Valid: req.Phone != ""}).
		Suffix("returning " + userColumns).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if isUniqueViolation(err, "") {
			return model.User{}, errs.ErrEmailTaken
		}
		return model.User{}, mapPgError(err)
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, userID int) (model.User, error) {
	q, args, err := qb.Select(userColumns).
		From(usersTableName).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, mapPgError(err)
	}
	return user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	q, args, err := qb.Select(userColumns).
		From(usersTableName).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, mapPgError(err)
	}
	return user, nil
}

func (r *repository) ListUsers(ctx context.Context) ([]model.User, error) {
	q, args, err := qb.Select(userColumns).
		From(usersTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, mapPgError(err)
	}
	return users, nil
}

func (r *repository) UpdateUser(ctx context.Context, userID int, req model.UpdateUserRequest) error {
	q := qb.Update(usersTableName).Where(sq.Eq{"id": userID})
	if req.Name != nil {
		q = q.Set("name", *req.Name)
	}
	if req.Email != nil {
		q = q.Set("email", *req.Email)
	}
	if req.Phone != nil {
		q = q.Set("phone", *req.Phone)
	}
	if req.IsActive != nil {
		q = q.Set("is_active", *req.IsActive)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "") {
			return errs.ErrEmailTaken
		}
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) error {
	q := qb.Update(usersTableName).
		Where(sq.Eq{"id": userID}).
		Set("name", req.Name).
		Set("phone", sql.NullString{String: req.Phone, Valid: req.Phone != ""})
	if req.EmailNotifications != nil {
		q = q.Set("email_notifications", *req.EmailNotifications)
	}
	if req.SMSNotifications != nil {
		q = q.Set("sms_notifications", *req.SMSNotifications)
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

// DeactivateUser is the only supported removal; user rows are never deleted.
func (r *repository) DeactivateUser(ctx context.Context, userID int) error {
	q, args, err := qb.Update(usersTableName).
		Set("is_active", false).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapPgError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

const adminColumns = `id, name, email, password, role, is_active`

func (r *repository) GetAdminByEmail(ctx context.Context, email string) (model.Admin, error) {
	q, args, err := qb.Select(adminColumns).
		From(adminsTableName).
		Where(sq.Eq{"email": email, "is_active": true}).
		ToSql()
	if err != nil {
		return model.Admin{}, err
	}
	var admin model.Admin
	if err := r.db.GetContext(ctx, &admin, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Admin{}, errs.ErrNotFound
		}
		return model.Admin{}, mapPgError(err)
	}
	return admin, nil
}

func (r *repository) GetAdmin(ctx context.Context, adminID int) (model.Admin, error) {
	q, args, err := qb.Select(adminColumns).
		From(adminsTableName).
		Where(sq.Eq{"id": adminID, "is_active": true}).
		ToSql()
	if err != nil {
		return model.Admin{}, err
	}
	var admin model.Admin
	if err := r.db.GetContext(ctx, &admin, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Admin{}, errs.ErrNotFound
		}
		return model.Admin{}, mapPgError(err)
	}
	return admin, nil
}

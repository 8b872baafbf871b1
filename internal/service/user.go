package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/versewell/library-service/internal/model"
)

func (s *Service) GetProfile(ctx context.Context, userID int) (model.User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (model.User, error) {
	if err := s.repo.UpdateProfile(ctx, userID, req); err != nil {
		return model.User{}, err
	}
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	return s.repo.CreateUser(ctx, req, string(hash))
}

func (s *Service) UpdateUser(ctx context.Context, userID int, req model.UpdateUserRequest) error {
	return s.repo.UpdateUser(ctx, userID, req)
}

func (s *Service) DeactivateUser(ctx context.Context, userID int) error {
	return s.repo.DeactivateUser(ctx, userID)
}

// Dashboard bundles the admin landing page data, fetched concurrently.
type Dashboard struct {
	Stats      model.Stats           `json:"stats"`
	Borrowings []model.BorrowingView `json:"borrowings"`
}

func (s *Service) GetDashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		stats, err := s.repo.Stats(ctx)
		if err != nil {
			return err
		}
		dash.Stats = stats
		return nil
	})
	gg.Go(func() error {
		borrowings, err := s.repo.ListBorrowingsAdmin(ctx)
		if err != nil {
			return err
		}
		dash.Borrowings = borrowings
		return nil
	})
	if err := gg.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}

func (s *Service) GetStats(ctx context.Context) (model.Stats, error) {
	return s.repo.Stats(ctx)
}

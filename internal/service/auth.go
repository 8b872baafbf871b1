package service

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/pkg/auth"
)

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthResponse{}, err
	}
	user, err := s.repo.CreateUser(ctx, model.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, string(hash))
	if err != nil {
		return model.AuthResponse{}, err
	}
	return s.issueToken(user.ID, user.Name, user.Email, auth.RoleUser)
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if !user.IsActive {
		return model.AuthResponse{}, errs.ErrInactiveUser
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}
	return s.issueToken(user.ID, user.Name, user.Email, auth.RoleUser)
}

func (s *Service) LoginAdmin(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	admin, err := s.repo.GetAdminByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}
	return s.issueToken(admin.ID, admin.Name, admin.Email, admin.Role)
}

func (s *Service) issueToken(id int, name, email, role string) (model.AuthResponse, error) {
	token, err := auth.NewToken(id, name, email, role)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Token: token,
		Name:  name,
		Email: email,
		Role:  role,
	}, nil
}

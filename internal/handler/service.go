package handler

import (
	"context"

	"github.com/versewell/library-service/internal/catalog"
	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BorrowService interface {
	Borrow(ctx context.Context, userID, bookID, loanDays int) (model.Borrowing, error)
	Return(ctx context.Context, borrowingID int) (model.ReturnReceipt, error)
	Renew(ctx context.Context, userID, borrowingID, extensionDays int) (model.Borrowing, error)
	RenewByBook(ctx context.Context, userID, bookID, extensionDays int) (model.Borrowing, error)
	ListBorrowings(ctx context.Context, userID int) ([]model.BorrowingView, error)
	ListBorrowingsAdmin(ctx context.Context) ([]model.BorrowingView, error)
	SendReminders(ctx context.Context, userID int) ([]model.BorrowingView, error)
	ListNotifications(ctx context.Context, userID int) ([]model.NotificationLog, error)
}

type BookService interface {
	ImportBook(ctx context.Context, req model.ImportBookRequest) (model.Book, error)
	GetBook(ctx context.Context, bookID int) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) ([]model.Book, error)
	ListBooksAdmin(ctx context.Context) ([]model.BookStats, error)
	UpdateBook(ctx context.Context, bookID int, fields map[string]any) error
	DeleteBook(ctx context.Context, bookID int) error
	AdjustTotalCopies(ctx context.Context, bookID, totalCopies int) (model.Book, error)
}

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	LoginAdmin(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (model.User, error)
	UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	UpdateUser(ctx context.Context, userID int, req model.UpdateUserRequest) error
	DeactivateUser(ctx context.Context, userID int) error
	GetDashboard(ctx context.Context) (service.Dashboard, error)
	GetStats(ctx context.Context) (model.Stats, error)
}

type CatalogService interface {
	Search(ctx context.Context, query string, startIndex, maxResults int) (model.CatalogSearchResult, error)
}

var (
	_ BorrowService  = (*service.Service)(nil)
	_ BookService    = (*service.Service)(nil)
	_ AuthService    = (*service.Service)(nil)
	_ UserService    = (*service.Service)(nil)
	_ CatalogService = (*catalog.Client)(nil)
)

package service

import (
	"context"

	"github.com/versewell/library-service/internal/model"
)

// ImportBook materializes a catalog entry as a library book; importing the
// same catalog volume again adds a copy.
func (s *Service) ImportBook(ctx context.Context, req model.ImportBookRequest) (model.Book, error) {
	return s.repo.ImportBook(ctx, req)
}

func (s *Service) GetBook(ctx context.Context, bookID int) (model.Book, error) {
	return s.repo.GetBook(ctx, bookID)
}

func (s *Service) ListBooks(ctx context.Context, page, size int) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, page, size)
}

func (s *Service) ListBooksAdmin(ctx context.Context) ([]model.BookStats, error) {
	return s.repo.ListBooksAdmin(ctx)
}

// UpdateBook edits book metadata. Copy counts are excluded here on purpose:
// they only move through AdjustTotalCopies so the ledger stays consistent.
func (s *Service) UpdateBook(ctx context.Context, bookID int, fields map[string]any) error {
	delete(fields, "total_copies")
	delete(fields, "available_copies")
	return s.repo.UpdateBook(ctx, bookID, fields)
}

func (s *Service) DeleteBook(ctx context.Context, bookID int) error {
	return s.repo.DeleteBook(ctx, bookID)
}

func (s *Service) AdjustTotalCopies(ctx context.Context, bookID, totalCopies int) (model.Book, error) {
	return s.repo.AdjustTotalCopies(ctx, bookID, totalCopies)
}

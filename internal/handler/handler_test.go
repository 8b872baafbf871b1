package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/versewell/library-service/internal/catalog"
	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/pkg/validate"

	service_mocks "github.com/versewell/library-service/internal/handler/mocks"
)

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		bookID       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			bookID: "1",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(context.Background(), 1).
					Return(model.Book{
						ID:              1,
						GoogleBookID:    nullStr("zyTCAlFPjgYC"),
						Title:           "The Go Programming Language",
						Authors:         model.StringList{"Alan A. A. Donovan", "Brian W. Kernighan"},
						Categories:      model.StringList{"Computers"},
						TotalCopies:     2,
						AvailableCopies: 1,
						CreatedAt:       createdAt,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"googleBookId":"zyTCAlFPjgYC","title":"The Go Programming Language","authors":["Alan A. A. Donovan","Brian W. Kernighan"],"isbn":null,"coverUrl":null,"description":null,"pages":null,"publishedYear":null,"categories":["Computers"],"previewLink":null,"infoLink":null,"totalCopies":2,"availableCopies":1,"createdAt":"2024-01-01T00:00:00Z"}`,
			},
		},
		{
			name:   "err. not found",
			bookID: "404",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(context.Background(), 404).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name:         "err. invalid id",
			bookID:       "abc",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid bookId"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tc := newController(t)
			defer tc.ctrl.Finish()

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/books/:bookId", tc.h.GetBook)

			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/books/%s", tt.bookID), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(tc.bookSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Register(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"name":"Reader","email":"reader@example.com","password":"secret1"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Register(context.Background(), model.RegisterRequest{
						Name:     "Reader",
						Email:    "reader@example.com",
						Password: "secret1",
					}).
					Return(model.AuthResponse{
						Token: "jwt-token",
						Name:  "Reader",
						Email: "reader@example.com",
						Role:  "user",
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"token":"jwt-token","name":"Reader","email":"reader@example.com","role":"user"}`,
			},
		},
		{
			name: "err. email taken",
			body: `{"name":"Reader","email":"reader@example.com","password":"secret1"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Register(context.Background(), model.RegisterRequest{
						Name:     "Reader",
						Email:    "reader@example.com",
						Password: "secret1",
					}).
					Return(model.AuthResponse{}, errs.ErrEmailTaken)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"email already registered"}`,
			},
		},
		{
			name:         "err. short password",
			body:         `{"name":"Reader","email":"reader@example.com","password":"123"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"code=400, message=Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tc := newController(t)
			defer tc.ctrl.Finish()

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/auth/register", tc.h.Register)

			r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(tc.authSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_SearchCatalog(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		query        string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok",
			query: "golang",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					Search(context.Background(), "golang", 0, 0).
					Return(model.CatalogSearchResult{
						Books: []model.CatalogEntry{
							{
								ID:          "zyTCAlFPjgYC",
								Title:       "The Go Programming Language",
								Authors:     []string{"Alan A. A. Donovan"},
								Year:        "2015",
								Description: "No description available",
								Categories:  []string{"Computers"},
							},
						},
						TotalItems: 1,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"books":[{"id":"zyTCAlFPjgYC","title":"The Go Programming Language","authors":["Alan A. A. Donovan"],"year":"2015","description":"No description available","categories":["Computers"],"embeddable":false,"publicDomain":false}],"totalItems":1,"hasMore":false}`,
			},
		},
		{
			name:  "err. upstream unavailable",
			query: "golang",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					Search(context.Background(), "golang", 0, 0).
					Return(model.CatalogSearchResult{}, errors.Wrap(catalog.ErrUnavailable, "google books"))
			},
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"google books: catalog unavailable"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tc := newController(t)
			defer tc.ctrl.Finish()

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/catalog", tc.h.SearchCatalog)

			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/catalog?q=%s", tt.query), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(tc.catalogSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

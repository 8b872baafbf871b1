package handler_test

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/handler"
	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/pkg/auth"
	"github.com/versewell/library-service/pkg/validate"

	service_mocks "github.com/versewell/library-service/internal/handler/mocks"
)

func sqlTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func nullStr(s string) model.NullString {
	return model.NullString{NullString: sql.NullString{String: s, Valid: true}}
}

type testController struct {
	ctrl       *gomock.Controller
	h          *handler.Handler
	borrowSvc  *service_mocks.MockBorrowService
	bookSvc    *service_mocks.MockBookService
	authSvc    *service_mocks.MockAuthService
	userSvc    *service_mocks.MockUserService
	catalogSvc *service_mocks.MockCatalogService
}

func newController(t *testing.T) testController {
	t.Helper()
	ctrl := gomock.NewController(t)
	tc := testController{
		ctrl:       ctrl,
		borrowSvc:  service_mocks.NewMockBorrowService(ctrl),
		bookSvc:    service_mocks.NewMockBookService(ctrl),
		authSvc:    service_mocks.NewMockAuthService(ctrl),
		userSvc:    service_mocks.NewMockUserService(ctrl),
		catalogSvc: service_mocks.NewMockCatalogService(ctrl),
	}
	log := zap.NewExample().Named("test")
	tc.h = handler.New(tc.borrowSvc, tc.bookSvc, tc.authSvc, tc.userSvc, tc.catalogSvc, log)
	return tc
}

func TestHandler_Borrow(t *testing.T) {
	t.Parallel()
	userCtx := auth.SetAuthContext(context.Background(), auth.AuthContext{
		SubjectID: 7,
		Name:      "Reader",
		Role:      auth.RoleUser,
	})
	borrowedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Borrow(userCtx, 7, 1, 0).
					Return(model.Borrowing{
						ID:           11,
						BorrowingUid: "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
						UserID:       7,
						BookID:       1,
						Status:       model.StatusBorrowed,
						BorrowedAt:   borrowedAt,
						DueDate:      dueDate,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":11,"borrowingUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","userId":7,"bookId":1,"status":"borrowed","borrowedAt":"2024-01-01T10:00:00Z","dueDate":"2024-01-15T00:00:00Z","returnedAt":null,"fineAmount":0,"renewalCount":0,"renewalRequested":false,"lastRenewalDate":null}`,
			},
		},
		{
			name:         "err. bookId required",
			body:         `{}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"code=400, message=Key: 'BorrowRequest.BookID' Error:Field validation for 'BookID' failed on the 'required' tag"}`,
			},
		},
		{
			name: "err. no copies available",
			body: `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Borrow(userCtx, 7, 1, 0).
					Return(model.Borrowing{}, errs.ErrNoCopiesAvailable)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book not available for borrowing"}`,
			},
		},
		{
			name: "err. already borrowed",
			body: `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Borrow(userCtx, 7, 1, 0).
					Return(model.Borrowing{}, errs.ErrAlreadyBorrowed)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book already borrowed by this user"}`,
			},
		},
		{
			name: "err. deactivated user",
			body: `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Borrow(userCtx, 7, 1, 0).
					Return(model.Borrowing{}, errs.ErrInactiveUser)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"user account is deactivated"}`,
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
			e.POST("/borrowings", tc.h.Borrow)

			r := httptest.NewRequest(http.MethodPost, "/borrowings", strings.NewReader(tt.body))
			r = r.WithContext(userCtx)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(tc.borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Return(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		borrowingID  string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:        "ok. on time",
			borrowingID: "5",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Return(context.Background(), 5).
					Return(model.ReturnReceipt{BorrowingID: 5}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"borrowingId":5,"fineAmount":0,"daysOverdue":0}`,
			},
		},
		{
			name:        "ok. overdue with fine",
			borrowingID: "5",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Return(context.Background(), 5).
					Return(model.ReturnReceipt{BorrowingID: 5, FineAmount: 1.5, DaysOverdue: 3}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"borrowingId":5,"fineAmount":1.5,"daysOverdue":3}`,
			},
		},
		{
			name:        "err. not currently borrowed",
			borrowingID: "5",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Return(context.Background(), 5).
					Return(model.ReturnReceipt{}, errs.ErrNotBorrowed)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"book is not currently borrowed"}`,
			},
		},
		{
			name:        "err. not found",
			borrowingID: "404",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Return(context.Background(), 404).
					Return(model.ReturnReceipt{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name:         "err. invalid id",
			borrowingID:  "abc",
			mockBehavior: func(r *service_mocks.MockBorrowService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid borrowingId"}`,
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
			e.POST("/borrowings/:borrowingId/return", tc.h.Return)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrowings/%s/return", tt.borrowingID), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(tc.borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Renew(t *testing.T) {
	t.Parallel()
	userCtx := auth.SetAuthContext(context.Background(), auth.AuthContext{
		SubjectID: 7,
		Name:      "Reader",
		Role:      auth.RoleUser,
	})
	borrowedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)
	renewedAt := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"extensionDays":14}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Renew(userCtx, 7, 5, 14).
					Return(model.Borrowing{
						ID:               5,
						BorrowingUid:     "83575e12-7ce0-48ee-9931-51919ff3c9ee",
						UserID:           7,
						BookID:           1,
						Status:           model.StatusBorrowed,
						BorrowedAt:       borrowedAt,
						DueDate:          dueDate,
						RenewalCount:     1,
						RenewalRequested: true,
						LastRenewalDate:  model.NullTime{NullTime: sqlTime(renewedAt)},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":5,"borrowingUid":"83575e12-7ce0-48ee-9931-51919ff3c9ee","userId":7,"bookId":1,"status":"borrowed","borrowedAt":"2024-01-01T10:00:00Z","dueDate":"2024-01-29T00:00:00Z","returnedAt":null,"fineAmount":0,"renewalCount":1,"renewalRequested":true,"lastRenewalDate":"2024-01-10T12:00:00Z"}`,
			},
		},
		{
			name: "err. renewal limit reached",
			body: `{"extensionDays":14}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Renew(userCtx, 7, 5, 14).
					Return(model.Borrowing{}, errs.ErrRenewalLimit)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"maximum renewal limit reached"}`,
			},
		},
		{
			name: "err. borrowing belongs to another user",
			body: `{"extensionDays":14}`,
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					Renew(userCtx, 7, 5, 14).
					Return(model.Borrowing{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
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
			e.POST("/borrowings/:borrowingId/renew", tc.h.Renew)

			r := httptest.NewRequest(http.MethodPost, "/borrowings/5/renew", strings.NewReader(tt.body))
			r = r.WithContext(userCtx)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(tc.borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

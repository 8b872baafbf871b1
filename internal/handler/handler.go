package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/catalog"
	"github.com/versewell/library-service/internal/errs"
	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/pkg/auth"
	"github.com/versewell/library-service/pkg/validate"
)

type Handler struct {
	borrowSvc  BorrowService
	bookSvc    BookService
	authSvc    AuthService
	userSvc    UserService
	catalogSvc CatalogService
	log        *zap.Logger
}

func New(borrowSvc BorrowService, bookSvc BookService, authSvc AuthService, userSvc UserService, catalogSvc CatalogService, log *zap.Logger) *Handler {
	return &Handler{
		borrowSvc:  borrowSvc,
		bookSvc:    bookSvc,
		authSvc:    authSvc,
		userSvc:    userSvc,
		catalogSvc: catalogSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig()),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/admin/login", h.LoginAdmin)

	api.GET("/catalog", h.SearchCatalog)
	api.GET("/books", h.ListBooks)
	api.GET("/books/:bookId", h.GetBook)

	user := api.Group("", jwtAuthentication)
	user.GET("/whoami", h.Whoami)
	user.POST("/books", h.ImportBook)
	user.GET("/borrowings", h.ListBorrowings)
	user.POST("/borrowings", h.Borrow)
	user.POST("/borrowings/:borrowingId/return", h.Return)
	user.POST("/borrowings/:borrowingId/renew", h.Renew)
	user.POST("/renew-book", h.RenewByBook)
	user.GET("/notifications", h.ListNotifications)
	user.GET("/profile", h.GetProfile)
	user.PUT("/profile", h.UpdateProfile)

	admin := api.Group("/admin", jwtAuthentication, adminOnly)
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/stats", h.Stats)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:userId", h.UpdateUser)
	admin.DELETE("/users/:userId", h.DeactivateUser)
	admin.GET("/books", h.ListBooksAdmin)
	admin.PUT("/books/:bookId", h.UpdateBook)
	admin.PUT("/books/:bookId/copies", h.AdjustCopies)
	admin.DELETE("/books/:bookId", h.DeleteBook)
	admin.GET("/borrowings", h.ListBorrowingsAdmin)
	admin.POST("/borrowings/:borrowingId/return", h.Return)
	admin.POST("/reminders", h.SendReminders)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps domain sentinel errors onto HTTP status classes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrAlreadyBorrowed),
		errors.Is(err, errs.ErrRenewalLimit),
		errors.Is(err, errs.ErrNoCopiesAvailable),
		errors.Is(err, errs.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrNotBorrowed),
		errors.Is(err, errs.ErrNoOverdueBooks),
		errors.Is(err, errs.ErrInactiveUser):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrBusy), errors.Is(err, catalog.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.authSvc.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.authSvc.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) LoginAdmin(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.authSvc.LoginAdmin(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Whoami(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, ac)
}

func (h *Handler) SearchCatalog(c echo.Context) error {
	startIndex, _ := strconv.Atoi(c.QueryParam("startIndex"))
	maxResults, _ := strconv.Atoi(c.QueryParam("maxResults"))
	res, err := h.catalogSvc.Search(c.Request().Context(), c.QueryParam("q"), startIndex, maxResults)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListBooks(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	books, err := h.bookSvc.ListBooks(c.Request().Context(), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bookId")
	}
	book, err := h.bookSvc.GetBook(c.Request().Context(), bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) ImportBook(c echo.Context) error {
	var req model.ImportBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.bookSvc.ImportBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetProfile(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	user, err := h.userSvc.GetProfile(c.Request().Context(), ac.SubjectID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req model.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.userSvc.UpdateProfile(c.Request().Context(), ac.SubjectID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/versewell/library-service/internal/model"
	"github.com/versewell/library-service/pkg/auth"
)

func (h *Handler) ListBorrowings(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	items, err := h.borrowSvc.ListBorrowings(c.Request().Context(), ac.SubjectID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Borrow(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	brw, err := h.borrowSvc.Borrow(c.Request().Context(), ac.SubjectID, req.BookID, req.LoanDays)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, brw)
}

func (h *Handler) Return(c echo.Context) error {
	borrowingID, err := strconv.Atoi(c.Param("borrowingId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid borrowingId")
	}
	receipt, err := h.borrowSvc.Return(c.Request().Context(), borrowingID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, receipt)
}

func (h *Handler) Renew(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	borrowingID, err := strconv.Atoi(c.Param("borrowingId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid borrowingId")
	}
	var req model.RenewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	brw, err := h.borrowSvc.Renew(c.Request().Context(), ac.SubjectID, borrowingID, req.ExtensionDays)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brw)
}

// RenewByBook keeps the dashboard's renew-by-book flow: the active borrowing
// is resolved from the authenticated user and the book id.
func (h *Handler) RenewByBook(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req struct {
		BookID        int `json:"bookId" validate:"required"`
		ExtensionDays int `json:"extensionDays"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	brw, err := h.borrowSvc.RenewByBook(c.Request().Context(), ac.SubjectID, req.BookID, req.ExtensionDays)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brw)
}

func (h *Handler) ListNotifications(c echo.Context) error {
	ac, err := auth.GetAuthContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	logs, err := h.borrowSvc.ListNotifications(c.Request().Context(), ac.SubjectID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, logs)
}

// Package handler contains the HTTP handlers.  Handlers bind request
// bodies, delegate to repositories or the ticket service, and map
// domain errors onto HTTP status codes.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

// reqCtx derives a bounded context for DB work from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// subjectID returns the authenticated subject id or writes a 401.
func subjectID(c echo.Context) (uint64, bool) {
	id, ok := middleware.SubjectID(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return id, ok
}

// pageParams reads ?page and ?per_page with 1/10 defaults.
func pageParams(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}

// writeDomainError maps repository and service errors to responses.
// Unrecognized errors become opaque 500s so internals never leak.
func writeDomainError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrPartNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "part name already exists"})
	case errors.Is(err, repository.ErrPartNumberExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "part number already exists"})
	case errors.Is(err, repository.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient stock"})
	case errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only open or cancelled tickets can be deleted"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

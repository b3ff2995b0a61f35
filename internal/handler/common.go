// Package handler contains the HTTP layer: request decoding, error
// mapping and response shaping.  All workflow rules live in the service
// package; handlers never touch the database directly.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/repository"
)

// validate is the shared struct validator for request DTOs.
var validate = validator.New()

var errInvalidTargetID = errors.New("invalid record id in to_update")

// getUserID extracts the authenticated user id that the JWT middleware
// stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// paramUint parses a numeric path parameter.
func paramUint(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

// paramKind parses the :field path parameter into a FieldKind.
func paramKind(c echo.Context) (model.FieldKind, error) {
	kind, ok := model.ParseFieldKind(c.Param("field"))
	if !ok {
		return "", errors.New("unknown field kind")
	}
	return kind, nil
}

// writeError maps service and repository errors onto HTTP responses.  The
// sentinel carried by the error chain decides the status code; the error
// text becomes the response message.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

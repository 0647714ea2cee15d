package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/storefront/internal/service"
)

type detail struct {
	Detail string `json:"detail"`
}

type fieldErrors struct {
	Errors service.FieldErrors `json:"errors"`
}

// fail maps a service error onto the response and logs it under op.
func fail(c echo.Context, l *slog.Logger, op string, err error) error {
	var fe service.FieldErrors
	switch {
	case errors.As(err, &fe):
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", "invalid fields", "error", err)
		return c.JSON(http.StatusBadRequest, fieldErrors{Errors: fe})
	case errors.Is(err, service.ErrValidation):
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", err.Error())
		return c.JSON(http.StatusBadRequest, detail{Detail: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		l.Warn(op+"_error", "status", http.StatusNotFound, "reason", err.Error())
		return c.JSON(http.StatusNotFound, detail{Detail: err.Error()})
	default:
		l.Error(op+"_error", "status", http.StatusInternalServerError, "error", err)
		return c.JSON(http.StatusInternalServerError, detail{Detail: "internal error"})
	}
}

func userID(c echo.Context, l *slog.Logger, op string) (uint, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		l.Warn(op+"_error", "status", http.StatusUnauthorized, "error", err)
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

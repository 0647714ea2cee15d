package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/services/auth/internal/service"
)

type detail struct {
	Detail string `json:"detail"`
}

type fieldErrors struct {
	Errors service.FieldErrors `json:"errors"`
}

func fail(c echo.Context, l *slog.Logger, op string, err error) error {
	var fe service.FieldErrors
	switch {
	case errors.As(err, &fe):
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", "invalid fields", "error", err)
		return c.JSON(http.StatusBadRequest, fieldErrors{Errors: fe})
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidOTP):
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", err.Error())
		return c.JSON(http.StatusBadRequest, detail{Detail: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefreshToken):
		l.Warn(op+"_error", "status", http.StatusUnauthorized, "error", err)
		return c.JSON(http.StatusUnauthorized, detail{Detail: unwrapped(err)})
	case errors.Is(err, service.ErrConflict):
		l.Warn(op+"_error", "status", http.StatusConflict, "reason", err.Error())
		return c.JSON(http.StatusConflict, detail{Detail: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		l.Warn(op+"_error", "status", http.StatusNotFound, "reason", err.Error())
		return c.JSON(http.StatusNotFound, detail{Detail: err.Error()})
	default:
		l.Error(op+"_error", "status", http.StatusInternalServerError, "error", err)
		return c.JSON(http.StatusInternalServerError, detail{Detail: "internal error"})
	}
}

// unwrapped keeps token parser internals out of 401 bodies.
func unwrapped(err error) string {
	if errors.Is(err, service.ErrInvalidRefreshToken) {
		return service.ErrInvalidRefreshToken.Error()
	}
	return service.ErrInvalidCredentials.Error()
}

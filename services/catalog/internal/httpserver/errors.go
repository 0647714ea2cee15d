package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
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
	case errors.Is(err, service.ErrNotFound):
		l.Warn(op+"_error", "status", http.StatusNotFound, "reason", err.Error())
		return c.JSON(http.StatusNotFound, detail{Detail: err.Error()})
	case errors.Is(err, service.ErrInUse):
		l.Warn(op+"_error", "status", http.StatusConflict, "reason", err.Error())
		return c.JSON(http.StatusConflict, detail{Detail: err.Error()})
	default:
		l.Error(op+"_error", "status", http.StatusInternalServerError, "error", err)
		return c.JSON(http.StatusInternalServerError, detail{Detail: "internal error"})
	}
}

func pathID(c echo.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

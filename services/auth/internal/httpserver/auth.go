package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/cookie"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
	"github.com/Skotchmaster/storefront/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies cookie.Jar
}

func (h *AuthHTTP) setSession(c echo.Context, res *service.LoginResult) {
	c.SetCookie(h.Cookies.Create(cookie.AccessName, res.AccessToken, res.AccessExp))
	c.SetCookie(h.Cookies.Create(cookie.RefreshName, res.RefreshToken, res.RefreshExp))
}

func (h *AuthHTTP) clearSession(c echo.Context) {
	c.SetCookie(h.Cookies.Delete(cookie.RefreshName))
	c.SetCookie(h.Cookies.Delete(cookie.AccessName))
}

func tokenResponse(res *service.LoginResult) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
		IsAdmin:      res.IsAdmin,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(c, l, "register", err)
	}

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "login", err)
	}
	if res.OTPRequired {
		l.Info("login_otp_required", "user_id", res.UserID)
		return c.JSON(http.StatusAccepted, transport.OTPRequiredResponse{OTPRequired: true, UserID: res.UserID})
	}

	h.setSession(c, res)
	l.Info("login_successful", "user_id", res.UserID)
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHTTP) VerifyOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_verify_otp")

	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn("verify_otp_error", "status", 400, "reason", "bad user id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req transport.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_otp_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.VerifyOTP(ctx, uint(id), req.OTP)
	if err != nil {
		return fail(c, l, "verify_otp", err)
	}

	h.setSession(c, res)
	l.Info("verify_otp_successful", "user_id", res.UserID)
	return c.JSON(http.StatusOK, tokenResponse(res))
}

// Refresh accepts the refresh token from the cookie or from the JSON body.
// The body answer is what the other services' auth client reads.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	token := ""
	if rc, err := c.Cookie(cookie.RefreshName); err == nil {
		token = rc.Value
	}
	if token == "" && strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh token")
		return c.JSON(http.StatusUnauthorized, detail{Detail: service.ErrInvalidRefreshToken.Error()})
	}

	res, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		h.clearSession(c)
		return fail(c, l, "refresh", err)
	}

	h.setSession(c, res)
	l.Info("refresh_successful", "user_id", res.UserID)
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if rc, err := c.Cookie(cookie.RefreshName); err == nil {
		if err := h.Svc.LogOut(ctx, rc.Value); err != nil {
			h.clearSession(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
		}
	}

	h.clearSession(c)
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_profile")

	id, err := authmw.UserID(c)
	if err != nil {
		l.Warn("profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.Profile(ctx, id)
	if err != nil {
		return fail(c, l, "profile", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_profile")

	id, err := authmw.UserID(c)
	if err != nil {
		l.Warn("update_profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateProfile(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_profile", err)
	}
	l.Info("update_profile_successful", "user_id", id)
	return c.JSON(http.StatusOK, user)
}

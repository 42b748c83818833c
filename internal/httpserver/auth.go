package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_manager/internal/logging"
	authmw "github.com/Skotchmaster/store_manager/internal/middleware/auth"
	"github.com/Skotchmaster/store_manager/internal/service"
	"github.com/Skotchmaster/store_manager/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(l, "register", err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user":    user,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return httpError(l, "login", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "logged in successfully",
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"expires_at":   res.AccessExp.Unix(),
		"user":         res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.Svc.Logout(ctx, p); err != nil {
		return httpError(l, "logout", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

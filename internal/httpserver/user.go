package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_manager/internal/logging"
	authmw "github.com/Skotchmaster/store_manager/internal/middleware/auth"
	"github.com/Skotchmaster/store_manager/internal/service"
	"github.com/Skotchmaster/store_manager/internal/transport"
	"github.com/Skotchmaster/store_manager/internal/util"
)

// UserHTTP is the admin-only account management surface.
type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "user_create", "invalid body", err)
	}

	user, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		return httpError(l, "user_create", err)
	}

	l.Info("create_user_success", "user_id", user.ID, "role", user.Role)
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "user_get", "id must be a positive integer", err)
	}

	user, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return httpError(l, "user_get", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list_users")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListUsers(ctx, offset, limit)
	if err != nil {
		return httpError(l, "user_list", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "user_update", "id must be a positive integer", err)
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "user_update", "invalid body", err)
	}

	user, err := h.Svc.UpdateUser(ctx, id, req)
	if err != nil {
		return httpError(l, "user_update", err)
	}

	l.Info("update_user_success", "user_id", id)
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "user_delete", "id must be a positive integer", err)
	}

	if err := h.Svc.DeleteUser(ctx, id, p); err != nil {
		return httpError(l, "user_delete", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}

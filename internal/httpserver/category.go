package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/service"
	"github.com/Skotchmaster/store_manager/internal/transport"
	"github.com/Skotchmaster/store_manager/internal/util"
)

type CategoryHTTP struct {
	Svc *service.CatalogService
}

func (h *CategoryHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_create", "invalid body", err)
	}

	category, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return httpError(l, "category_create", err)
	}

	l.Info("create_category_success", "category_id", category.ID)
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_category")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "category_get", "id must be a positive integer", err)
	}

	category, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return httpError(l, "category_get", err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list_categories")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListCategories(ctx, offset, limit)
	if err != nil {
		return httpError(l, "category_list", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CategoryHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update_category")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "category_update", "id must be a positive integer", err)
	}

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_update", "invalid body", err)
	}

	category, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return httpError(l, "category_update", err)
	}

	l.Info("update_category_success", "category_id", id)
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete_category")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "category_delete", "id must be a positive integer", err)
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return httpError(l, "category_delete", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "category deleted"})
}

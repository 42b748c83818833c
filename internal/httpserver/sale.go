package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_manager/internal/logging"
	authmw "github.com/Skotchmaster/store_manager/internal/middleware/auth"
	"github.com/Skotchmaster/store_manager/internal/models"
	"github.com/Skotchmaster/store_manager/internal/service"
	"github.com/Skotchmaster/store_manager/internal/transport"
	"github.com/Skotchmaster/store_manager/internal/util"
)

type SaleHTTP struct {
	Svc *service.SaleService
}

type saleLineView struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Cost     int64  `json:"cost"`
}

type saleView struct {
	ID          uint           `json:"id"`
	Items       int64          `json:"items"`
	Total       int64          `json:"total"`
	AttendantID uint           `json:"attendant_id"`
	CreatedAt   time.Time      `json:"date_created"`
	Products    []saleLineView `json:"products"`
}

func newSaleView(s *models.SaleRecord) saleView {
	lines := make([]saleLineView, len(s.LineItems))
	for i, item := range s.LineItems {
		lines[i] = saleLineView{
			Name:     item.ProductName,
			Price:    item.Price,
			Quantity: item.Quantity,
			Cost:     item.LineTotal,
		}
	}
	return saleView{
		ID:          s.ID,
		Items:       s.Items,
		Total:       s.Total,
		AttendantID: s.AttendantID,
		CreatedAt:   s.CreatedAt,
		Products:    lines,
	}
}

func (h *SaleHTTP) CreateSale(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.create_sale")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req transport.CreateSaleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "sale_create", "invalid body", err)
	}

	sale, err := h.Svc.CreateSale(ctx, req.Products, p.UserID)
	if err != nil {
		return httpError(l, "sale_create", err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Sale Record created successfully",
		"sale":    newSaleView(sale),
	})
}

func (h *SaleHTTP) GetSale(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.get_sale")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "sale_get", "id must be a positive integer", err)
	}

	sale, err := h.Svc.GetSale(ctx, id, p)
	if err != nil {
		return httpError(l, "sale_get", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sale": newSaleView(sale)})
}

func (h *SaleHTTP) ListSales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sale.list_sales")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	attendantID := util.ParseIntDefault(c.QueryParam("attendant_id"), 0)
	if attendantID < 0 {
		return badRequest(l, "sale_list", "attendant_id must be a positive integer", nil)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListSales(ctx, p, uint(attendantID), offset, limit)
	if err != nil {
		return httpError(l, "sale_list", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/events"
	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/metrics"
	"github.com/Skotchmaster/store_manager/internal/models"
	"github.com/Skotchmaster/store_manager/internal/repo"
	"github.com/Skotchmaster/store_manager/internal/transport"
)

type SaleService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type cartLine struct {
	name  string
	count int64
}

// CreateSale validates the whole cart, then prices it and commits the stock
// decrements, the sale header and one line item per cart entry in a single
// transaction. Either everything is written or nothing is.
//
// Stock may fall to exactly min_stock but not below it. A product listed on
// several lines is checked against the combined count.
func (s *SaleService) CreateSale(ctx context.Context, cart []transport.CartLine, attendantID uint) (*models.SaleRecord, error) {
	l := logging.FromContext(ctx).With("svc", "sale.create", "attendant_id", attendantID)

	lines, err := validateCart(cart)
	if err != nil {
		metrics.ObserveRejected(rejectReason(err))
		l.Warn("create_sale_rejected", "reason", err.Error())
		return nil, err
	}

	var sale *models.SaleRecord
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		sale, err = commitSale(ctx, tx, lines, attendantID)
		return err
	})
	if err != nil {
		metrics.ObserveRejected(rejectReason(err))
		if Message(err) != "" {
			l.Warn("create_sale_rejected", "reason", err.Error())
		} else {
			l.Error("create_sale_failed", "error", err)
		}
		return nil, err
	}

	metrics.ObserveSale(sale.Items, sale.Total)
	events.Emit(ctx, s.Events, events.TopicSales, strconv.FormatUint(uint64(sale.ID), 10), saleCreatedEvent(sale))
	l.Info("create_sale_success", "sale_id", sale.ID, "items", sale.Items, "total", sale.Total)
	return sale, nil
}

// validateCart checks every line without touching storage.
func validateCart(cart []transport.CartLine) ([]cartLine, error) {
	if len(cart) == 0 {
		return nil, newError(ErrValidation, "products are required")
	}

	lines := make([]cartLine, 0, len(cart))
	for _, item := range cart {
		name, err := validName("product name", item.Name)
		if err != nil {
			return nil, err
		}
		switch {
		case item.Count < 0:
			return nil, newError(ErrValidation, "product count cannot be negative")
		case item.Count == 0:
			return nil, newError(ErrValidation, "product count must be 1 and above")
		}
		lines = append(lines, cartLine{name: name, count: item.Count})
	}
	return lines, nil
}

func commitSale(ctx context.Context, tx *repo.GormRepo, lines []cartLine, attendantID uint) (*models.SaleRecord, error) {
	requested := make(map[string]int64, len(lines))
	for _, line := range lines {
		requested[line.name] = addCapped(requested[line.name], line.count)
	}
	names := make([]string, 0, len(requested))
	for name := range requested {
		names = append(names, name)
	}
	sort.Strings(names)

	locked, err := tx.LockProductsByName(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	products := make(map[string]models.Product, len(locked))
	for _, p := range locked {
		products[p.Name] = p
	}

	for _, line := range lines {
		if _, ok := products[line.name]; !ok {
			return nil, newError(ErrNotFound, "product named %s does not exist", line.name)
		}
	}

	checked := make(map[string]bool, len(requested))
	for _, line := range lines {
		if checked[line.name] {
			continue
		}
		checked[line.name] = true

		p := products[line.name]
		if requested[line.name] > p.Stock-p.MinStock {
			return nil, newError(ErrBusinessRule, "cannot sell past minimum stock for %s", line.name)
		}
	}

	sale := &models.SaleRecord{AttendantID: attendantID}
	items := make([]models.SaleLineItem, 0, len(lines))
	for _, line := range lines {
		p := products[line.name]
		if p.Price > 0 && line.count > math.MaxInt64/p.Price {
			return nil, newError(ErrBusinessRule, "sale total is too large")
		}
		lineTotal := p.Price * line.count
		if sale.Total > math.MaxInt64-lineTotal || sale.Items > math.MaxInt64-line.count {
			return nil, newError(ErrBusinessRule, "sale total is too large")
		}

		sale.Items += line.count
		sale.Total += lineTotal
		items = append(items, models.SaleLineItem{
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    line.count,
			LineTotal:   lineTotal,
		})
	}

	for _, name := range names {
		p := products[name]
		n, err := tx.DecrementStock(ctx, p.ID, p.Stock, p.Stock-requested[name])
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", name, err)
		}
		if n != 1 {
			return nil, newError(ErrConflict, "stock for %s changed during the sale, please retry", name)
		}
	}

	if err := tx.CreateSaleRecord(ctx, sale); err != nil {
		return nil, fmt.Errorf("create sale record: %w", err)
	}
	for i := range items {
		items[i].SaleID = sale.ID
	}
	if err := tx.CreateSaleLineItems(ctx, items); err != nil {
		return nil, fmt.Errorf("create sale line items: %w", err)
	}

	sale.LineItems = items
	return sale, nil
}

// GetSale returns a sale with its line items. Attendants may only read their
// own sales.
func (s *SaleService) GetSale(ctx context.Context, id uint, p Principal) (*models.SaleRecord, error) {
	sale, err := s.Repo.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "sale record with id %d does not exist", id)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if !p.IsAdmin() && sale.AttendantID != p.UserID {
		return nil, newError(ErrForbidden, "you can only view your own sale records")
	}
	return sale, nil
}

// ListSales pages through sale headers. Attendants always see only their own;
// admins see all, or one attendant's when attendantID is non-zero.
func (s *SaleService) ListSales(ctx context.Context, p Principal, attendantID uint, offset, limit int) (int64, []models.SaleRecord, error) {
	if !p.IsAdmin() {
		if attendantID != 0 && attendantID != p.UserID {
			return 0, nil, newError(ErrForbidden, "you can only view your own sale records")
		}
		attendantID = p.UserID
	}

	total, items, err := s.Repo.ListSales(ctx, attendantID, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list sales: %w", err)
	}
	return total, items, nil
}

// addCapped adds two non-negative counts, saturating at MaxInt64 so a huge
// combined count still fails the floor check instead of wrapping.
func addCapped(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func saleCreatedEvent(sale *models.SaleRecord) events.SaleCreated {
	lines := make([]events.SaleLine, len(sale.LineItems))
	for i, item := range sale.LineItems {
		lines[i] = events.SaleLine{
			Name:     item.ProductName,
			Price:    item.Price,
			Quantity: item.Quantity,
			Cost:     item.LineTotal,
		}
	}
	return events.SaleCreated{
		Type:        events.TypeSaleCreated,
		SaleID:      sale.ID,
		AttendantID: sale.AttendantID,
		Items:       sale.Items,
		Total:       sale.Total,
		Lines:       lines,
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBusinessRule):
		return "business_rule"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

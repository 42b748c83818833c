package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_manager/internal/models"
)

func (r *GormRepo) CreateSaleRecord(ctx context.Context, sale *models.SaleRecord) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}

func (r *GormRepo) CreateSaleLineItems(ctx context.Context, items []models.SaleLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&items).Error
}

func (r *GormRepo) GetSale(ctx context.Context, id uint) (*models.SaleRecord, error) {
	var sale models.SaleRecord
	if err := r.DB.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&sale).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales pages through sale headers, newest first. A zero attendantID
// lists every attendant's sales.
func (r *GormRepo) ListSales(ctx context.Context, attendantID uint, offset, limit int) (int64, []models.SaleRecord, error) {
	byAttendant := func(db *gorm.DB) *gorm.DB {
		if attendantID != 0 {
			return db.Where("attendant_id = ?", attendantID)
		}
		return db
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.SaleRecord{}).Scopes(byAttendant).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.SaleRecord, 0, limit)
	if err := r.DB.WithContext(ctx).Scopes(byAttendant).Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CountSalesByAttendant(ctx context.Context, attendantID uint) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.SaleRecord{}).
		Where("attendant_id = ?", attendantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

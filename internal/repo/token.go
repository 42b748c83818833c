package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_manager/internal/models"
)

// RevokeToken adds a token id to the denylist. Revoking twice is a no-op.
func (r *GormRepo) RevokeToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(&models.RevokedToken{Token: jti}).Error
}

func (r *GormRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

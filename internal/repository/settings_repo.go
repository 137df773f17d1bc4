package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// SettingsRepository single-row company settings storage
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row, creating an empty one on first access.
func (r *SettingsRepository) Get(ctx context.Context) (*entity.CompanySettings, error) {
	var s entity.CompanySettings
	err := r.db.WithContext(ctx).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = entity.CompanySettings{}
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *entity.CompanySettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

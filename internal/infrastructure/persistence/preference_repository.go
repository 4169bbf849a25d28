package persistence

import (
	"context"
	"errors"

	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/erp/notify/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPreferenceRepository implements notification.PreferenceRepository
// using GORM
type GormPreferenceRepository struct {
	db *gorm.DB
}

// NewGormPreferenceRepository creates a new GormPreferenceRepository
func NewGormPreferenceRepository(db *gorm.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

// FindByUser finds a user's preference row
func (r *GormPreferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	var model models.PreferenceModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a preference row. The user_id unique index makes
// racing first saves collapse into one row.
func (r *GormPreferenceRepository) Save(ctx context.Context, p *notification.Preference) error {
	model := models.PreferenceModelFromDomain(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

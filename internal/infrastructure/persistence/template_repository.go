package persistence

import (
	"context"
	"errors"

	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/erp/notify/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository implements notification.TemplateRepository using
// GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByType finds the template registered for a notification type
func (r *GormTemplateRepository) FindByType(ctx context.Context, typ notification.Type) (*notification.Template, error) {
	var model models.TemplateModel
	if err := r.db.WithContext(ctx).Where("type = ?", typ).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save registers or replaces the template for a notification type
func (r *GormTemplateRepository) Save(ctx context.Context, t *notification.Template) error {
	model := models.TemplateModelFromDomain(t)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

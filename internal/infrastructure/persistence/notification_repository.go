package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/erp/notify/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// active scopes a query to live rows; soft-deleted notifications are
// invisible to every user-facing finder
func (r *GormNotificationRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("active = ?", true)
}

// FindByID finds an active notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.active(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser returns a page of a user's active notifications, newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, q notification.Query) ([]*notification.Notification, int64, error) {
	query := r.active(ctx).Where("user_id = ?", userID)
	if q.Read != nil {
		query = query.Where("read = ?", *q.Read)
	}
	if q.Type != nil {
		query = query.Where("type = ?", *q.Type)
	}
	if q.Priority != nil {
		query = query.Where("priority = ?", *q.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.NotificationModel
	if err := query.
		Order("created_at DESC").
		Offset(q.Filter.Offset()).
		Limit(q.Filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return toDomainSlice(rows), total, nil
}

// FindUnreadByUser returns all of a user's unread active notifications
func (r *GormNotificationRepository) FindUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	var rows []models.NotificationModel
	if err := r.active(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// FindByIDsForUser returns the active notifications among ids owned by the
// user
func (r *GormNotificationRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*notification.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.NotificationModel
	if err := r.active(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// Search returns active notifications whose title or message contains the
// term, case-insensitively, newest first
func (r *GormNotificationRepository) Search(ctx context.Context, userID uuid.UUID, term string, filter shared.Filter) ([]*notification.Notification, int64, error) {
	pattern := "%" + term + "%"
	query := r.active(ctx).
		Where("user_id = ?", userID).
		Where("title ILIKE ? OR message ILIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.NotificationModel
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return toDomainSlice(rows), total, nil
}

// CountByUser counts a user's active notifications
func (r *GormNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountUnreadByUser counts a user's unread active notifications
func (r *GormNotificationRepository) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx).Where("user_id = ? AND read = ?", userID, false).Count(&count).Error
	return count, err
}

// CountReadByUser counts a user's read active notifications
func (r *GormNotificationRepository) CountReadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx).Where("user_id = ? AND read = ?", userID, true).Count(&count).Error
	return count, err
}

// CountCreatedBetween counts a user's active notifications created in
// [from, to)
func (r *GormNotificationRepository) CountCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.active(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	return count, err
}

// TypeBreakdown returns per-type counts of a user's active notifications
func (r *GormNotificationRepository) TypeBreakdown(ctx context.Context, userID uuid.UUID) (map[notification.Type]int64, error) {
	type row struct {
		Type  notification.Type
		Count int64
	}
	var rows []row
	if err := r.active(ctx).
		Select("type, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	breakdown := make(map[notification.Type]int64, len(rows))
	for _, r := range rows {
		breakdown[r.Type] = r.Count
	}
	return breakdown, nil
}

// FindDueScheduled returns active unsent notifications whose scheduled time
// is at or before now
func (r *GormNotificationRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]*notification.Notification, error) {
	var rows []models.NotificationModel
	if err := r.active(ctx).
		Where("sent = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", false, now).
		Order("scheduled_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// DeactivateOldRead soft-deletes read notifications created before the
// cutoff and returns the number of rows touched
func (r *GormNotificationRepository) DeactivateOldRead(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("active = ? AND read = ? AND created_at < ?", true, true, cutoff).
		Updates(map[string]any{"active": false, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	model := models.NotificationModelFromDomain(n)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// SaveAll persists a batch of notifications
func (r *GormNotificationRepository) SaveAll(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	rows := make([]*models.NotificationModel, 0, len(ns))
	for _, n := range ns {
		rows = append(rows, models.NotificationModelFromDomain(n))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rows).Error
}

func toDomainSlice(rows []models.NotificationModel) []*notification.Notification {
	out := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

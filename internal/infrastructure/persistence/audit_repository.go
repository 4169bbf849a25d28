package persistence

import (
	"context"
	"time"

	"github.com/erp/notify/internal/domain/audit"
	"github.com/erp/notify/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save appends an audit entry
func (r *GormAuditRepository) Save(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(e)).Error
}

// FindByUser returns a user's audit entries since the given time, newest
// first
func (r *GormAuditRepository) FindByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]*audit.Entry, error) {
	var rows []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAuditEntries(rows), nil
}

// FindByAction returns entries for one action since the given time, newest
// first
func (r *GormAuditRepository) FindByAction(ctx context.Context, action audit.Action, since time.Time) ([]*audit.Entry, error) {
	var rows []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("action = ? AND created_at >= ?", action, since).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAuditEntries(rows), nil
}

func toAuditEntries(rows []models.AuditLogModel) []*audit.Entry {
	out := make([]*audit.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

// AuditRecorder is the fire-and-forget audit.Recorder used by application
// services. Write failures are logged and swallowed so auditing can never
// fail the operation being audited.
type AuditRecorder struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewAuditRecorder creates an AuditRecorder
func NewAuditRecorder(repo audit.Repository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, logger: logger}
}

// Record persists an audit entry, logging and swallowing any error
func (r *AuditRecorder) Record(ctx context.Context, e *audit.Entry) {
	if err := r.repo.Save(ctx, e); err != nil {
		r.logger.Error("Failed to record audit entry",
			zap.String("action", string(e.Action)),
			zap.Error(err))
	}
}

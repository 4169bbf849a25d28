package models

import (
	"encoding/json"

	"github.com/erp/notify/internal/domain/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditLogModel is the persistence model for audit entries
type AuditLogModel struct {
	BaseModel
	Action      audit.Action `gorm:"type:varchar(50);not null;index"`
	UserID      *uuid.UUID   `gorm:"type:uuid;index"`
	EntityType  string       `gorm:"type:varchar(50)"`
	EntityID    *uuid.UUID   `gorm:"type:uuid"`
	DetailsJSON string       `gorm:"column:details;type:jsonb"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit entry
func (m *AuditLogModel) ToDomain() *audit.Entry {
	e := &audit.Entry{
		BaseEntity: m.BaseModel.ToDomain(),
		Action:     m.Action,
		UserID:     m.UserID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
	}
	if m.DetailsJSON != "" {
		var details map[string]any
		if err := json.Unmarshal([]byte(m.DetailsJSON), &details); err != nil {
			modelLogger.Warn("failed to parse audit details JSON",
				zap.String("entry_id", m.ID.String()),
				zap.Error(err))
		} else {
			e.Details = details
		}
	}
	return e
}

// AuditLogModelFromDomain converts a domain audit entry to its persistence
// model
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	m := &AuditLogModel{
		Action:     e.Action,
		UserID:     e.UserID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
	}
	m.FromDomain(e.BaseEntity)
	if len(e.Details) > 0 {
		if raw, err := json.Marshal(e.Details); err == nil {
			m.DetailsJSON = string(raw)
		}
	}
	return m
}

package models

import (
	"encoding/json"
	"time"

	"github.com/erp/notify/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("persistence.models")

// NotificationModel is the persistence model for notification delivery
// records
type NotificationModel struct {
	BaseModel
	UserID           uuid.UUID             `gorm:"type:uuid;not null;index:idx_notifications_user"`
	Type             notification.Type     `gorm:"type:varchar(50);not null;index"`
	Priority         notification.Priority `gorm:"type:varchar(20);not null"`
	Channel          notification.Channel  `gorm:"type:varchar(20);not null"`
	Title            string                `gorm:"type:varchar(200);not null"`
	Message          string                `gorm:"type:text;not null"`
	Read             bool                  `gorm:"not null;default:false;index:idx_notifications_user"`
	ReadAt           *time.Time
	Sent             bool `gorm:"not null;default:false"`
	SentAt           *time.Time
	ScheduledAt      *time.Time `gorm:"index"`
	ActionURL        string     `gorm:"type:varchar(500)"`
	ActionLabel      string     `gorm:"type:varchar(100)"`
	ReferenceType    string     `gorm:"type:varchar(50)"`
	ReferenceID      *uuid.UUID `gorm:"type:uuid"`
	TemplateDataJSON string     `gorm:"column:template_data;type:jsonb"`
	Active           bool       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	n := &notification.Notification{
		BaseEntity:    m.BaseModel.ToDomain(),
		UserID:        m.UserID,
		Type:          m.Type,
		Priority:      m.Priority,
		Channel:       m.Channel,
		Title:         m.Title,
		Message:       m.Message,
		Read:          m.Read,
		ReadAt:        m.ReadAt,
		Sent:          m.Sent,
		SentAt:        m.SentAt,
		ScheduledAt:   m.ScheduledAt,
		ActionURL:     m.ActionURL,
		ActionLabel:   m.ActionLabel,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Active:        m.Active,
	}
	if m.TemplateDataJSON != "" {
		var data notification.TemplateData
		if err := json.Unmarshal([]byte(m.TemplateDataJSON), &data); err != nil {
			modelLogger.Warn("failed to parse template_data JSON",
				zap.String("notification_id", m.ID.String()),
				zap.Error(err))
		} else {
			n.TemplateData = data
		}
	}
	return n
}

// NotificationModelFromDomain converts a domain notification to its
// persistence model
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		UserID:        n.UserID,
		Type:          n.Type,
		Priority:      n.Priority,
		Channel:       n.Channel,
		Title:         n.Title,
		Message:       n.Message,
		Read:          n.Read,
		ReadAt:        n.ReadAt,
		Sent:          n.Sent,
		SentAt:        n.SentAt,
		ScheduledAt:   n.ScheduledAt,
		ActionURL:     n.ActionURL,
		ActionLabel:   n.ActionLabel,
		ReferenceType: n.ReferenceType,
		ReferenceID:   n.ReferenceID,
		Active:        n.Active,
	}
	m.FromDomain(n.BaseEntity)
	if len(n.TemplateData) > 0 {
		if raw, err := json.Marshal(n.TemplateData); err == nil {
			m.TemplateDataJSON = string(raw)
		}
	}
	return m
}

// PreferenceModel is the persistence model for user notification settings
type PreferenceModel struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EmailEnabled     bool      `gorm:"not null;default:true"`
	SMSEnabled       bool      `gorm:"not null;default:false"`
	InAppEnabled     bool      `gorm:"not null;default:true"`
	PushEnabled      bool      `gorm:"not null;default:true"`
	QuietHoursStart  string    `gorm:"type:varchar(5)"`
	QuietHoursEnd    string    `gorm:"type:varchar(5)"`
	Timezone         string    `gorm:"type:varchar(50)"`
	EnabledTypesJSON string    `gorm:"column:enabled_types;type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (PreferenceModel) TableName() string {
	return "notification_preferences"
}

// ToDomain converts the persistence model to a domain preference
func (m *PreferenceModel) ToDomain() *notification.Preference {
	p := &notification.Preference{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		EmailEnabled:    m.EmailEnabled,
		SMSEnabled:      m.SMSEnabled,
		InAppEnabled:    m.InAppEnabled,
		PushEnabled:     m.PushEnabled,
		QuietHoursStart: m.QuietHoursStart,
		QuietHoursEnd:   m.QuietHoursEnd,
		Timezone:        m.Timezone,
	}
	if m.EnabledTypesJSON != "" && m.EnabledTypesJSON != "[]" {
		var types []notification.Type
		if err := json.Unmarshal([]byte(m.EnabledTypesJSON), &types); err != nil {
			modelLogger.Warn("failed to parse enabled_types JSON",
				zap.String("user_id", m.UserID.String()),
				zap.Error(err))
		} else {
			p.EnabledTypes = types
		}
	}
	return p
}

// PreferenceModelFromDomain converts a domain preference to its persistence
// model
func PreferenceModelFromDomain(p *notification.Preference) *PreferenceModel {
	m := &PreferenceModel{
		UserID:          p.UserID,
		EmailEnabled:    p.EmailEnabled,
		SMSEnabled:      p.SMSEnabled,
		InAppEnabled:    p.InAppEnabled,
		PushEnabled:     p.PushEnabled,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		Timezone:        p.Timezone,
	}
	m.FromDomain(p.BaseEntity)
	if raw, err := json.Marshal(p.EnabledTypes); err == nil {
		m.EnabledTypesJSON = string(raw)
	}
	return m
}

// TemplateModel is the persistence model for notification templates
type TemplateModel struct {
	BaseModel
	Type         notification.Type `gorm:"type:varchar(50);not null;uniqueIndex"`
	Title        string            `gorm:"type:varchar(200);not null"`
	EmailSubject string            `gorm:"type:varchar(200)"`
	EmailBody    string            `gorm:"type:text"`
	SMSBody      string            `gorm:"type:varchar(500)"`
	InAppBody    string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TemplateModel) TableName() string {
	return "notification_templates"
}

// ToDomain converts the persistence model to a domain template
func (m *TemplateModel) ToDomain() *notification.Template {
	return &notification.Template{
		BaseEntity:   m.BaseModel.ToDomain(),
		Type:         m.Type,
		Title:        m.Title,
		EmailSubject: m.EmailSubject,
		EmailBody:    m.EmailBody,
		SMSBody:      m.SMSBody,
		InAppBody:    m.InAppBody,
	}
}

// TemplateModelFromDomain converts a domain template to its persistence
// model
func TemplateModelFromDomain(t *notification.Template) *TemplateModel {
	m := &TemplateModel{
		Type:         t.Type,
		Title:        t.Title,
		EmailSubject: t.EmailSubject,
		EmailBody:    t.EmailBody,
		SMSBody:      t.SMSBody,
		InAppBody:    t.InAppBody,
	}
	m.FromDomain(t.BaseEntity)
	return m
}

package notification

import "strings"

// Channel represents a delivery mechanism for a notification
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelInApp Channel = "IN_APP"
	ChannelPush  Channel = "PUSH"
)

// IsValid returns true if the channel is one of the known delivery mechanisms
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelInApp, ChannelPush:
		return true
	default:
		return false
	}
}

// Priority represents the urgency of a notification.
// It drives which channels are eligible for delivery.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IsValid returns true if the priority is a known value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes a priority string. Unrecognized values fall back
// to NORMAL so that records stay storable; routing treats them the same way.
func ParsePriority(s string) Priority {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return PriorityNormal
}

// Type tags the business event a notification is about
type Type string

const (
	TypePaymentCreated    Type = "PAYMENT_CREATED"
	TypePaymentCompleted  Type = "PAYMENT_COMPLETED"
	TypePaymentFailed     Type = "PAYMENT_FAILED"
	TypeProjectCreated    Type = "PROJECT_CREATED"
	TypeProjectUpdated    Type = "PROJECT_UPDATED"
	TypeProjectAssigned   Type = "PROJECT_ASSIGNED"
	TypeBudgetWarning     Type = "BUDGET_WARNING"
	TypeBudgetCritical    Type = "BUDGET_CRITICAL"
	TypeBudgetExceeded    Type = "BUDGET_EXCEEDED"
	TypeSystemMaintenance Type = "SYSTEM_MAINTENANCE"
	TypeSystemUpdate      Type = "SYSTEM_UPDATE"
	TypeSystemError       Type = "SYSTEM_ERROR"
	TypeAnnouncement      Type = "ANNOUNCEMENT"
)

// AllTypes returns every known notification type
func AllTypes() []Type {
	return []Type{
		TypePaymentCreated,
		TypePaymentCompleted,
		TypePaymentFailed,
		TypeProjectCreated,
		TypeProjectUpdated,
		TypeProjectAssigned,
		TypeBudgetWarning,
		TypeBudgetCritical,
		TypeBudgetExceeded,
		TypeSystemMaintenance,
		TypeSystemUpdate,
		TypeSystemError,
		TypeAnnouncement,
	}
}

// IsValid returns true if the type is a known notification type
func (t Type) IsValid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// TemplateData carries the placeholder values captured at dispatch time
type TemplateData map[string]string

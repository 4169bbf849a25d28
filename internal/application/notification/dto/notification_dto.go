package dto

import (
	"time"

	"github.com/erp/notify/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID            uuid.UUID         `json:"id"`
	Type          string            `json:"type"`
	Priority      string            `json:"priority"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Read          bool              `json:"read"`
	ReadAt        *time.Time        `json:"read_at,omitempty"`
	Sent          bool              `json:"sent"`
	SentAt        *time.Time        `json:"sent_at,omitempty"`
	ScheduledAt   *time.Time        `json:"scheduled_at,omitempty"`
	ActionURL     string            `json:"action_url,omitempty"`
	ActionLabel   string            `json:"action_label,omitempty"`
	ReferenceType string            `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID        `json:"reference_id,omitempty"`
	TemplateData  map[string]string `json:"template_data,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ToNotificationResponse converts a domain notification to its API shape
func ToNotificationResponse(n *notification.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	return &NotificationResponse{
		ID:            n.ID,
		Type:          string(n.Type),
		Priority:      string(n.Priority),
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
		TemplateData:  n.TemplateData,
		CreatedAt:     n.CreatedAt,
	}
}

// ToNotificationResponses converts a slice of domain notifications
func ToNotificationResponses(ns []*notification.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, *ToNotificationResponse(n))
	}
	return out
}

// ListFilter represents filter options for listing notifications
type ListFilter struct {
	Page     int     `form:"page,default=1" binding:"min=1"`
	PageSize int     `form:"page_size,default=20" binding:"min=1,max=100"`
	Read     *bool   `form:"read"`
	Type     *string `form:"type"`
	Priority *string `form:"priority"`
}

// ListResponse represents a paginated list of notifications
type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
	TotalPages    int                    `json:"total_pages"`
}

// NewListResponse assembles a paginated list response
func NewListResponse(ns []*notification.Notification, total int64, page, pageSize int) *ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ListResponse{
		Notifications: ToNotificationResponses(ns),
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
	}
}

// UnreadCountResponse carries the badge count for the notification bell
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// StatsResponse summarizes a user's notification activity
type StatsResponse struct {
	Total      int64            `json:"total"`
	Unread     int64            `json:"unread"`
	Read       int64            `json:"read"`
	Today      int64            `json:"today"`
	ThisWeek   int64            `json:"this_week"`
	ByType     map[string]int64 `json:"by_type"`
	ByPriority map[string]int64 `json:"by_priority,omitempty"`
}

// SendRequest asks the dispatcher to deliver a notification
type SendRequest struct {
	UserID         uuid.UUID         `json:"user_id" binding:"required"`
	Type           string            `json:"type" binding:"required"`
	Priority       string            `json:"priority"`
	Data           map[string]string `json:"data"`
	ActionURL      string            `json:"action_url"`
	ActionLabel    string            `json:"action_label"`
	ReferenceType  string            `json:"reference_type"`
	ReferenceID    *uuid.UUID        `json:"reference_id"`
	ScheduledAt    *time.Time        `json:"scheduled_at"`
	IdempotencyKey string            `json:"idempotency_key"`
}

// SendAcceptedResponse acknowledges a dispatch that was queued for
// asynchronous delivery
type SendAcceptedResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Type     string    `json:"type"`
	Priority string    `json:"priority"`
	Status   string    `json:"status"`
}

// NewSendAcceptedResponse builds the acknowledgment for a queued dispatch
func NewSendAcceptedResponse(userID uuid.UUID, typ, priority string) *SendAcceptedResponse {
	return &SendAcceptedResponse{
		UserID:   userID,
		Type:     typ,
		Priority: priority,
		Status:   "ACCEPTED",
	}
}

// BulkSendRequest dispatches the same notification to many recipients
type BulkSendRequest struct {
	UserIDs     []uuid.UUID       `json:"user_ids" binding:"required,min=1"`
	Type        string            `json:"type" binding:"required"`
	Priority    string            `json:"priority"`
	Data        map[string]string `json:"data"`
	ActionURL   string            `json:"action_url"`
	ActionLabel string            `json:"action_label"`
}

// DispatchResultResponse reports the outcome of one dispatch
type DispatchResultResponse struct {
	NotificationID *uuid.UUID     `json:"notification_id,omitempty"`
	UserID         uuid.UUID      `json:"user_id"`
	Skipped        bool           `json:"skipped"`
	Attempted      []string       `json:"attempted"`
	Delivered      []string       `json:"delivered"`
	Failures       []FailureEntry `json:"failures,omitempty"`
}

// FailureEntry names one channel that failed and why
type FailureEntry struct {
	Channel string `json:"channel"`
	Error   string `json:"error"`
}

// BulkDeleteRequest removes several notifications at once
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// BulkResultResponse reports how many rows an operation touched
type BulkResultResponse struct {
	Affected int64 `json:"affected"`
}

// SearchFilter represents options for searching notifications
type SearchFilter struct {
	Query    string `form:"q" binding:"required"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// SearchResultResponse is one ranked search hit
type SearchResultResponse struct {
	Notification NotificationResponse `json:"notification"`
	Relevance    float64              `json:"relevance"`
	Summary      string               `json:"summary"`
}

// SearchResponse represents a ranked list of search hits
type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
}

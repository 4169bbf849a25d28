package dto

import (
	"github.com/erp/notify/internal/domain/notification"
)

// PreferenceResponse represents a user's notification settings
type PreferenceResponse struct {
	EmailEnabled    bool     `json:"email_enabled"`
	SMSEnabled      bool     `json:"sms_enabled"`
	InAppEnabled    bool     `json:"in_app_enabled"`
	PushEnabled     bool     `json:"push_enabled"`
	QuietHoursStart string   `json:"quiet_hours_start"`
	QuietHoursEnd   string   `json:"quiet_hours_end"`
	Timezone        string   `json:"timezone"`
	EnabledTypes    []string `json:"enabled_types"`
}

// ToPreferenceResponse converts a domain preference to its API shape
func ToPreferenceResponse(p *notification.Preference) *PreferenceResponse {
	if p == nil {
		return nil
	}
	types := make([]string, 0, len(p.EnabledTypes))
	for _, t := range p.EnabledTypes {
		types = append(types, string(t))
	}
	return &PreferenceResponse{
		EmailEnabled:    p.EmailEnabled,
		SMSEnabled:      p.SMSEnabled,
		InAppEnabled:    p.InAppEnabled,
		PushEnabled:     p.PushEnabled,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		Timezone:        p.Timezone,
		EnabledTypes:    types,
	}
}

// UpdatePreferenceRequest carries a partial settings update; omitted fields
// keep their current values
type UpdatePreferenceRequest struct {
	EmailEnabled    *bool     `json:"email_enabled"`
	SMSEnabled      *bool     `json:"sms_enabled"`
	InAppEnabled    *bool     `json:"in_app_enabled"`
	PushEnabled     *bool     `json:"push_enabled"`
	QuietHoursStart *string   `json:"quiet_hours_start"`
	QuietHoursEnd   *string   `json:"quiet_hours_end"`
	Timezone        *string   `json:"timezone"`
	EnabledTypes    *[]string `json:"enabled_types"`
}

// ToUpdate converts the request into a domain preference update
func (r UpdatePreferenceRequest) ToUpdate() notification.PreferenceUpdate {
	update := notification.PreferenceUpdate{
		EmailEnabled:    r.EmailEnabled,
		SMSEnabled:      r.SMSEnabled,
		InAppEnabled:    r.InAppEnabled,
		PushEnabled:     r.PushEnabled,
		QuietHoursStart: r.QuietHoursStart,
		QuietHoursEnd:   r.QuietHoursEnd,
		Timezone:        r.Timezone,
	}
	if r.EnabledTypes != nil {
		types := make([]notification.Type, 0, len(*r.EnabledTypes))
		for _, t := range *r.EnabledTypes {
			types = append(types, notification.Type(t))
		}
		update.EnabledTypes = types
	}
	return update
}

package notification

import (
	"time"

	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
)

// Default quiet-hours window and timezone applied when a preference row is
// synthesized on first send.
const (
	DefaultQuietHoursStart = "22:00"
	DefaultQuietHoursEnd   = "07:00"
	DefaultTimezone        = "Asia/Riyadh"
)

// Preference holds one user's notification settings: per-channel toggles,
// the quiet-hours window, and the set of notification types the user wants
// to receive. Created lazily with defaults on first send; lookups through
// the store never fail with "not found".
type Preference struct {
	shared.BaseEntity
	UserID          uuid.UUID
	EmailEnabled    bool
	SMSEnabled      bool
	InAppEnabled    bool
	PushEnabled     bool
	QuietHoursStart string // "HH:MM", empty disables the window
	QuietHoursEnd   string
	Timezone        string
	EnabledTypes    []Type
}

// DefaultPreference synthesizes the documented default settings for a user:
// email on, SMS off, in-app on, push on, quiet hours 22:00-07:00, all
// notification types enabled.
func DefaultPreference(userID uuid.UUID) *Preference {
	return &Preference{
		BaseEntity:      shared.NewBaseEntity(),
		UserID:          userID,
		EmailEnabled:    true,
		SMSEnabled:      false,
		InAppEnabled:    true,
		PushEnabled:     true,
		QuietHoursStart: DefaultQuietHoursStart,
		QuietHoursEnd:   DefaultQuietHoursEnd,
		Timezone:        DefaultTimezone,
		EnabledTypes:    AllTypes(),
	}
}

// ChannelEnabled returns the toggle state for a channel
func (p *Preference) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelInApp:
		return p.InAppEnabled
	case ChannelPush:
		return p.PushEnabled
	default:
		return false
	}
}

// TypeEnabled reports whether the user wants notifications of this type.
// An empty set means no restriction.
func (p *Preference) TypeEnabled(t Type) bool {
	if len(p.EnabledTypes) == 0 {
		return true
	}
	for _, enabled := range p.EnabledTypes {
		if enabled == t {
			return true
		}
	}
	return false
}

// InQuietHours reports whether the given instant falls inside the user's
// quiet-hours window, evaluated in the user's timezone. Windows may cross
// midnight (the default 22:00-07:00 does). An unset window never matches.
//
// Quiet hours are stored and surfaced through the API but no send path
// suppresses delivery on them yet.
func (p *Preference) InQuietHours(at time.Time) bool {
	start, okStart := parseClock(p.QuietHoursStart)
	end, okEnd := parseClock(p.QuietHoursEnd)
	if !okStart || !okEnd {
		return false
	}

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := at.In(loc)
	minute := local.Hour()*60 + local.Minute()

	if start <= end {
		return minute >= start && minute < end
	}
	// Window crosses midnight
	return minute >= start || minute < end
}

// parseClock parses "HH:MM" into minutes since midnight
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// PreferenceUpdate carries a partial update: only non-nil fields are
// applied, everything else keeps its current value.
type PreferenceUpdate struct {
	EmailEnabled    *bool
	SMSEnabled      *bool
	InAppEnabled    *bool
	PushEnabled     *bool
	QuietHoursStart *string
	QuietHoursEnd   *string
	Timezone        *string
	EnabledTypes    []Type
}

// Apply overwrites only the fields the update explicitly supplies
func (p *Preference) Apply(u PreferenceUpdate) {
	if u.EmailEnabled != nil {
		p.EmailEnabled = *u.EmailEnabled
	}
	if u.SMSEnabled != nil {
		p.SMSEnabled = *u.SMSEnabled
	}
	if u.InAppEnabled != nil {
		p.InAppEnabled = *u.InAppEnabled
	}
	if u.PushEnabled != nil {
		p.PushEnabled = *u.PushEnabled
	}
	if u.QuietHoursStart != nil {
		p.QuietHoursStart = *u.QuietHoursStart
	}
	if u.QuietHoursEnd != nil {
		p.QuietHoursEnd = *u.QuietHoursEnd
	}
	if u.Timezone != nil {
		p.Timezone = *u.Timezone
	}
	if u.EnabledTypes != nil {
		p.EnabledTypes = u.EnabledTypes
	}
	p.Touch()
}

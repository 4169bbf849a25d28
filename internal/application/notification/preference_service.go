package notification

import (
	"context"
	"errors"
	"time"

	"github.com/erp/notify/internal/application/notification/dto"
	"github.com/erp/notify/internal/domain/audit"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PreferenceService manages a user's notification settings. Reads never
// fail with not-found: a user without a stored row gets the defaults.
type PreferenceService struct {
	prefRepo notification.PreferenceRepository
	auditor  audit.Recorder
	logger   *zap.Logger
}

// NewPreferenceService creates a preference service
func NewPreferenceService(prefRepo notification.PreferenceRepository, auditor audit.Recorder, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{
		prefRepo: prefRepo,
		auditor:  auditor,
		logger:   logger,
	}
}

// Get returns the user's settings, synthesizing defaults when no row exists
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*dto.PreferenceResponse, error) {
	pref, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.ToPreferenceResponse(pref), nil
}

// Update applies a partial settings change and persists the result. The
// first update for a user materializes the defaults row.
func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, req dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	pref, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	pref.Apply(req.ToUpdate())

	if err := s.prefRepo.Save(ctx, pref); err != nil {
		s.logger.Error("Failed to save preferences",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save preferences")
	}

	if entry, err := audit.NewEntry(audit.ActionPreferencesUpdated, &userID, "PREFERENCE", &pref.ID, map[string]any{
		"email_enabled":  pref.EmailEnabled,
		"sms_enabled":    pref.SMSEnabled,
		"in_app_enabled": pref.InAppEnabled,
		"push_enabled":   pref.PushEnabled,
	}); err == nil {
		s.auditor.Record(ctx, entry)
	}

	return dto.ToPreferenceResponse(pref), nil
}

func (s *PreferenceService) getOrDefault(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	pref, err := s.prefRepo.FindByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return notification.DefaultPreference(userID), nil
	}
	s.logger.Error("Failed to load preferences",
		zap.String("user_id", userID.String()),
		zap.Error(err))
	return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load preferences")
}

func validateUpdate(req dto.UpdatePreferenceRequest) error {
	if req.QuietHoursStart != nil && !validClock(*req.QuietHoursStart) {
		return shared.NewDomainError("INVALID_QUIET_HOURS", "Quiet hours must be HH:MM")
	}
	if req.QuietHoursEnd != nil && !validClock(*req.QuietHoursEnd) {
		return shared.NewDomainError("INVALID_QUIET_HOURS", "Quiet hours must be HH:MM")
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return shared.NewDomainError("INVALID_TIMEZONE", "Unknown timezone")
		}
	}
	if req.EnabledTypes != nil {
		for _, t := range *req.EnabledTypes {
			if !notification.Type(t).IsValid() {
				return shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type: "+t)
			}
		}
	}
	return nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

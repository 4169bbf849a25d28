package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/notify/internal/application/notification/dto"
	"github.com/erp/notify/internal/domain/audit"
	"github.com/erp/notify/internal/domain/identity"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailSender delivers a rendered email to one address
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a rendered text message to one phone number
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// PushSender delivers a push notification to a user's registered devices
type PushSender interface {
	SendPush(ctx context.Context, userID uuid.UUID, title, message string) error
}

// IdempotencyStore remembers dispatch keys so retried requests do not send
// twice. Reserve returns false when the key was already used.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SMS bodies longer than this are truncated before handing to the gateway
const smsMaxRunes = 160

// How long one external channel send may take before it is abandoned
const channelSendTimeout = 10 * time.Second

// How long an idempotency key blocks duplicate dispatches
const idempotencyTTL = 24 * time.Hour

// ErrDuplicateDispatch reports a dispatch suppressed by its idempotency key
var ErrDuplicateDispatch = shared.NewDomainError("DUPLICATE_DISPATCH", "Notification was already dispatched for this key")

// DispatchRequest describes one notification to deliver
type DispatchRequest struct {
	UserID         uuid.UUID
	Type           notification.Type
	Priority       notification.Priority
	Data           notification.TemplateData
	ActionURL      string
	ActionLabel    string
	ReferenceType  string
	ReferenceID    *uuid.UUID
	ScheduledAt    *time.Time
	IdempotencyKey string
}

// ChannelError pairs a delivery channel with the error it produced
type ChannelError struct {
	Channel notification.Channel
	Err     error
}

// DispatchResult reports exactly what one dispatch did: which channels were
// attempted, which delivered, and which failed. Channel failures live here
// and are never returned as errors from Dispatch.
type DispatchResult struct {
	NotificationID *uuid.UUID
	UserID         uuid.UUID
	Skipped        bool
	Attempted      []notification.Channel
	Delivered      []notification.Channel
	Failures       []ChannelError
}

// ToResponse converts the result to its API shape
func (r *DispatchResult) ToResponse() *dto.DispatchResultResponse {
	resp := &dto.DispatchResultResponse{
		NotificationID: r.NotificationID,
		UserID:         r.UserID,
		Skipped:        r.Skipped,
		Attempted:      channelStrings(r.Attempted),
		Delivered:      channelStrings(r.Delivered),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, dto.FailureEntry{
			Channel: string(f.Channel),
			Error:   f.Err.Error(),
		})
	}
	return resp
}

func channelStrings(channels []notification.Channel) []string {
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		out = append(out, string(ch))
	}
	return out
}

// DispatchService resolves recipient, template, and preferences for a
// notification and fans it out over the eligible channels. A recipient or
// template that cannot be resolved aborts the dispatch before anything is
// persisted; individual channel failures are collected in the result and
// never fail the dispatch.
type DispatchService struct {
	notifRepo notification.Repository
	prefRepo  notification.PreferenceRepository
	tplRepo   notification.TemplateRepository
	userRepo  identity.UserRepository
	auditor   audit.Recorder
	email     EmailSender
	sms       SMSSender
	push      PushSender
	idem      IdempotencyStore
	logger    *zap.Logger
}

// NewDispatchService creates a dispatch service. The push sender and
// idempotency store may be nil; push then silently no-ops and duplicate
// suppression is disabled.
func NewDispatchService(
	notifRepo notification.Repository,
	prefRepo notification.PreferenceRepository,
	tplRepo notification.TemplateRepository,
	userRepo identity.UserRepository,
	auditor audit.Recorder,
	email EmailSender,
	sms SMSSender,
	push PushSender,
	idem IdempotencyStore,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		notifRepo: notifRepo,
		prefRepo:  prefRepo,
		tplRepo:   tplRepo,
		userRepo:  userRepo,
		auditor:   auditor,
		email:     email,
		sms:       sms,
		push:      push,
		idem:      idem,
		logger:    logger,
	}
}

// Dispatch delivers one notification. Returns an error only for fatal
// pre-send conditions (unknown user, unknown template, duplicate key,
// storage failure); once the in-app record is written, channel errors are
// reported through the result.
func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	result := &DispatchResult{UserID: req.UserID}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, identity.ErrUserNotFound
	}

	tpl, err := s.tplRepo.FindByType(ctx, req.Type)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, notification.ErrTemplateNotFound
		}
		return nil, err
	}

	pref, err := s.preferenceFor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// Users can opt out of whole notification types; CRITICAL does not
	// override that, only the channel toggles.
	if req.Priority != notification.PriorityCritical && !pref.TypeEnabled(req.Type) {
		s.logger.Debug("Notification type disabled by user, skipping dispatch",
			zap.String("user_id", req.UserID.String()),
			zap.String("type", string(req.Type)))
		result.Skipped = true
		return result, nil
	}

	if req.IdempotencyKey != "" && s.idem != nil {
		fresh, err := s.idem.Reserve(ctx, req.IdempotencyKey, idempotencyTTL)
		if err != nil {
			s.logger.Warn("Idempotency store unavailable, proceeding without duplicate suppression",
				zap.Error(err))
		} else if !fresh {
			return nil, ErrDuplicateDispatch
		}
	}

	n := notification.New(req.UserID, req.Type, req.Priority, tpl.RenderTitle(req.Data), tpl.RenderInApp(req.Data)).
		WithTemplateData(req.Data)
	if req.ActionURL != "" {
		n.WithAction(req.ActionURL, req.ActionLabel)
	}
	if req.ReferenceType != "" && req.ReferenceID != nil {
		n.WithReference(req.ReferenceType, *req.ReferenceID)
	}

	if req.ScheduledAt != nil {
		// Deferred delivery: persist the record unsent and let the
		// scheduled sweep release it. External channels are not attempted.
		n.Schedule(*req.ScheduledAt)
		if err := s.notifRepo.Save(ctx, n); err != nil {
			return nil, err
		}
		result.NotificationID = &n.ID
		return result, nil
	}

	n.MarkSent()
	if err := s.notifRepo.Save(ctx, n); err != nil {
		return nil, err
	}
	result.NotificationID = &n.ID

	contact := notification.ContactPoint{Email: user.Email, Phone: user.Phone}
	eligible := notification.EligibleChannels(req.Priority, pref, contact)
	result.Attempted = eligible

	for _, ch := range eligible {
		if err := s.sendChannel(ctx, ch, user, tpl, req.Data, n); err != nil {
			s.logger.Warn("Channel delivery failed",
				zap.String("channel", string(ch)),
				zap.String("user_id", user.ID.String()),
				zap.String("notification_id", n.ID.String()),
				zap.Error(err))
			result.Failures = append(result.Failures, ChannelError{Channel: ch, Err: err})
			continue
		}
		result.Delivered = append(result.Delivered, ch)
	}

	s.recordSent(ctx, n, result)

	return result, nil
}

// CreateInApp writes an in-app notification directly, bypassing template
// resolution and channel routing. For programmatic notices where the caller
// already holds the final text.
func (s *DispatchService) CreateInApp(ctx context.Context, userID uuid.UUID, typ notification.Type, priority notification.Priority, title, message string) (*DispatchResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, identity.ErrUserNotFound
	}

	n := notification.New(userID, typ, priority, title, message)
	n.MarkSent()
	if err := s.notifRepo.Save(ctx, n); err != nil {
		return nil, err
	}

	result := &DispatchResult{
		UserID:         userID,
		NotificationID: &n.ID,
		Attempted:      []notification.Channel{notification.ChannelInApp},
		Delivered:      []notification.Channel{notification.ChannelInApp},
	}
	s.recordSent(ctx, n, result)
	return result, nil
}

// sendChannel performs one external delivery under a per-channel timeout.
// IN_APP is already delivered by persisting the record.
func (s *DispatchService) sendChannel(
	ctx context.Context,
	ch notification.Channel,
	user *identity.User,
	tpl *notification.Template,
	data notification.TemplateData,
	n *notification.Notification,
) error {
	sendCtx, cancel := context.WithTimeout(ctx, channelSendTimeout)
	defer cancel()

	switch ch {
	case notification.ChannelEmail:
		return s.email.SendEmail(sendCtx, user.Email, tpl.RenderEmailSubject(data), tpl.RenderEmailBody(data))
	case notification.ChannelSMS:
		return s.sms.SendSMS(sendCtx, user.Phone, TruncateSMS(tpl.RenderSMS(data)))
	case notification.ChannelInApp:
		return nil
	case notification.ChannelPush:
		if s.push == nil {
			return nil
		}
		return s.push.SendPush(sendCtx, user.ID, n.Title, n.Message)
	default:
		return fmt.Errorf("unknown channel %q", ch)
	}
}

// preferenceFor loads a user's settings, synthesizing and persisting the
// defaults on first contact
func (s *DispatchService) preferenceFor(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	pref, err := s.prefRepo.FindByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	pref = notification.DefaultPreference(userID)
	if err := s.prefRepo.Save(ctx, pref); err != nil {
		// Racing first sends may both try to insert; defaults still apply.
		s.logger.Warn("Failed to persist default preferences",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return pref, nil
}

func (s *DispatchService) recordSent(ctx context.Context, n *notification.Notification, result *DispatchResult) {
	failures := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, string(f.Channel))
	}

	entry, err := audit.NewEntry(audit.ActionNotificationSent, &n.UserID, "NOTIFICATION", &n.ID, map[string]any{
		"type":      string(n.Type),
		"priority":  string(n.Priority),
		"attempted": channelStrings(result.Attempted),
		"delivered": channelStrings(result.Delivered),
		"failed":    failures,
	})
	if err != nil {
		s.logger.Error("Failed to build audit entry", zap.Error(err))
		return
	}
	s.auditor.Record(ctx, entry)
}

// DispatchAsync fires a dispatch without blocking the caller. Fatal errors
// are logged, never returned. The dispatch runs on a fresh context so it
// survives the caller's request ending.
func (s *DispatchService) DispatchAsync(req DispatchRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := s.Dispatch(ctx, req); err != nil {
			s.logger.Error("Async dispatch failed",
				zap.String("user_id", req.UserID.String()),
				zap.String("type", string(req.Type)),
				zap.Error(err))
		}
	}()
}

// DispatchBulk delivers the same notification to many recipients. Each
// recipient is dispatched independently; one failing recipient does not
// stop the rest.
func (s *DispatchService) DispatchBulk(ctx context.Context, userIDs []uuid.UUID, base DispatchRequest) []*DispatchResult {
	results := make([]*DispatchResult, 0, len(userIDs))
	for _, userID := range userIDs {
		req := base
		req.UserID = userID
		req.IdempotencyKey = "" // keys are per-recipient, not reusable

		result, err := s.Dispatch(ctx, req)
		if err != nil {
			s.logger.Warn("Bulk dispatch recipient failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			results = append(results, &DispatchResult{UserID: userID, Skipped: true})
			continue
		}
		results = append(results, result)
	}
	return results
}

// DispatchBroadcast delivers a notification to every active user
func (s *DispatchService) DispatchBroadcast(ctx context.Context, base DispatchRequest) ([]*DispatchResult, error) {
	users, err := s.userRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return s.DispatchBulk(ctx, ids, base), nil
}

// TruncateSMS shortens a message to the single-segment SMS limit, marking
// the cut with an ellipsis. Counting is in runes so multibyte text is not
// split mid-character.
func TruncateSMS(message string) string {
	runes := []rune(message)
	if len(runes) <= smsMaxRunes {
		return message
	}
	return string(runes[:smsMaxRunes-3]) + "..."
}

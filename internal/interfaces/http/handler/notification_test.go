package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	appnotification "github.com/erp/notify/internal/application/notification"
	"github.com/erp/notify/internal/domain/identity"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeUserRepository is an in-memory UserRepository
type fakeUserRepository struct {
	rows map[uuid.UUID]*identity.User
}

func newFakeUserRepository(users ...*identity.User) *fakeUserRepository {
	r := &fakeUserRepository{rows: make(map[uuid.UUID]*identity.User)}
	for _, u := range users {
		r.rows[u.ID] = u
	}
	return r
}

func (r *fakeUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	out := make([]*identity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.rows[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepository) FindAllActive(ctx context.Context) ([]*identity.User, error) {
	out := make([]*identity.User, 0, len(r.rows))
	for _, u := range r.rows {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepository) Save(ctx context.Context, u *identity.User) error {
	r.rows[u.ID] = u
	return nil
}

// fakeTemplateRepository serves one template per type
type fakeTemplateRepository struct {
	rows map[notification.Type]*notification.Template
}

func newFakeTemplateRepository(tpls ...*notification.Template) *fakeTemplateRepository {
	r := &fakeTemplateRepository{rows: make(map[notification.Type]*notification.Template)}
	for _, tpl := range tpls {
		r.rows[tpl.Type] = tpl
	}
	return r
}

func (r *fakeTemplateRepository) FindByType(ctx context.Context, typ notification.Type) (*notification.Template, error) {
	tpl, ok := r.rows[typ]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return tpl, nil
}

func (r *fakeTemplateRepository) Save(ctx context.Context, tpl *notification.Template) error {
	r.rows[tpl.Type] = tpl
	return nil
}

// fakeNotificationRepository captures saves; the async send path only needs
// Save, the finders return empty results.
type fakeNotificationRepository struct {
	mu    sync.Mutex
	saved []*notification.Notification
}

func (r *fakeNotificationRepository) savedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func (r *fakeNotificationRepository) lastSaved() *notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

func (r *fakeNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, q notification.Query) ([]*notification.Notification, int64, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepository) FindUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*notification.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepository) Search(ctx context.Context, userID uuid.UUID, term string, filter shared.Filter) ([]*notification.Notification, int64, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepository) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepository) CountReadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepository) CountCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepository) TypeBreakdown(ctx context.Context, userID uuid.UUID) (map[notification.Type]int64, error) {
	return nil, nil
}

func (r *fakeNotificationRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]*notification.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepository) DeactivateOldRead(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, n)
	return nil
}

func (r *fakeNotificationRepository) SaveAll(ctx context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, ns...)
	return nil
}

type nopEmailSender struct{}

func (nopEmailSender) SendEmail(ctx context.Context, to, subject, body string) error { return nil }

type nopSMSSender struct{}

func (nopSMSSender) SendSMS(ctx context.Context, to, message string) error { return nil }

type nopPushSender struct{}

func (nopPushSender) SendPush(ctx context.Context, userID uuid.UUID, title, message string) error {
	return nil
}

func newSendRouter(t *testing.T, users ...*identity.User) (*gin.Engine, *fakeNotificationRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	notifRepo := &fakeNotificationRepository{}
	tpl, err := notification.NewTemplate(notification.TypeAnnouncement,
		"{{title}}", "{{title}}", "{{message}}", "{{message}}", "{{message}}")
	require.NoError(t, err)

	dispatch := appnotification.NewDispatchService(
		notifRepo,
		newFakePreferenceRepository(),
		newFakeTemplateRepository(tpl),
		newFakeUserRepository(users...),
		nopAuditRecorder{},
		nopEmailSender{}, nopSMSSender{}, nopPushSender{},
		nil,
		zap.NewNop(),
	)
	notifSvc := appnotification.NewNotificationService(notifRepo, zap.NewNop())
	h := NewNotificationHandler(notifSvc, dispatch)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	return r, notifRepo
}

func TestNotificationHandler_SendAccepted(t *testing.T) {
	user, err := identity.NewUser("reem", "reem@example.com")
	require.NoError(t, err)
	r, notifRepo := newSendRouter(t, user)

	body := `{"user_id": "` + user.ID.String() + `", "type": "ANNOUNCEMENT", "data": {"title": "Notice", "message": "Doors close early today."}}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/notifications/send", user.ID.String(), body)

	// The response does not wait for delivery.
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "ACCEPTED")

	// The dispatch lands shortly after.
	require.Eventually(t, func() bool {
		return notifRepo.savedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
	saved := notifRepo.lastSaved()
	assert.Equal(t, user.ID, saved.UserID)
	assert.True(t, saved.Sent)
	assert.Equal(t, "Notice", saved.Title)
}

func TestNotificationHandler_SendRejectsUnknownType(t *testing.T) {
	user, err := identity.NewUser("reem", "reem@example.com")
	require.NoError(t, err)
	r, notifRepo := newSendRouter(t, user)

	body := `{"user_id": "` + user.ID.String() + `", "type": "NOT_A_TYPE"}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/notifications/send", user.ID.String(), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, notifRepo.savedCount())
}

package notification

import (
	"context"
	"time"

	"github.com/erp/notify/internal/domain/audit"
	"github.com/erp/notify/internal/domain/identity"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock implementation of notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, q notification.Query) ([]*notification.Notification, int64, error) {
	args := m.Called(ctx, userID, q)
	return args.Get(0).([]*notification.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) FindUnreadByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Search(ctx context.Context, userID uuid.UUID, term string, filter shared.Filter) ([]*notification.Notification, int64, error) {
	args := m.Called(ctx, userID, term, filter)
	return args.Get(0).([]*notification.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountUnreadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountReadByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) TypeBreakdown(ctx context.Context, userID uuid.UUID) (map[notification.Type]int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(map[notification.Type]int64), args.Error(1)
}

func (m *MockNotificationRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]*notification.Notification, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) DeactivateOldRead(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) SaveAll(ctx context.Context, ns []*notification.Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

// MockPreferenceRepository is a mock implementation of notification.PreferenceRepository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Preference), args.Error(1)
}

func (m *MockPreferenceRepository) Save(ctx context.Context, p *notification.Preference) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockTemplateRepository is a mock implementation of notification.TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByType(ctx context.Context, typ notification.Type) (*notification.Template, error) {
	args := m.Called(ctx, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Template), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, t *notification.Template) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllActive(ctx context.Context) ([]*identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockEmailSender is a mock implementation of EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockSMSSender is a mock implementation of SMSSender
type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	args := m.Called(ctx, to, message)
	return args.Error(0)
}

// MockPushSender is a mock implementation of PushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) SendPush(ctx context.Context, userID uuid.UUID, title, message string) error {
	args := m.Called(ctx, userID, title, message)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

// MockAuditRecorder is a mock implementation of audit.Recorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, e *audit.Entry) {
	m.Called(ctx, e)
}

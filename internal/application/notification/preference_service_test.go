package notification

import (
	"context"
	"testing"

	"github.com/erp/notify/internal/application/notification/dto"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPreferenceService() (*PreferenceService, *MockPreferenceRepository, *MockAuditRecorder) {
	repo := new(MockPreferenceRepository)
	auditor := new(MockAuditRecorder)
	return NewPreferenceService(repo, auditor, zap.NewNop()), repo, auditor
}

func TestPreferenceGet(t *testing.T) {
	ctx := context.Background()

	t.Run("missing row yields defaults", func(t *testing.T) {
		svc, repo, _ := newPreferenceService()
		userID := uuid.New()

		repo.On("FindByUser", ctx, userID).Return(nil, shared.ErrNotFound)

		resp, err := svc.Get(ctx, userID)
		require.NoError(t, err)

		assert.True(t, resp.EmailEnabled)
		assert.False(t, resp.SMSEnabled)
		assert.True(t, resp.InAppEnabled)
		assert.True(t, resp.PushEnabled)
		assert.Equal(t, "22:00", resp.QuietHoursStart)
		assert.Equal(t, "07:00", resp.QuietHoursEnd)
		assert.Equal(t, "Asia/Riyadh", resp.Timezone)
	})

	t.Run("stored row is returned as-is", func(t *testing.T) {
		svc, repo, _ := newPreferenceService()
		userID := uuid.New()
		pref := notification.DefaultPreference(userID)
		pref.SMSEnabled = true

		repo.On("FindByUser", ctx, userID).Return(pref, nil)

		resp, err := svc.Get(ctx, userID)
		require.NoError(t, err)
		assert.True(t, resp.SMSEnabled)
	})
}

func TestPreferenceUpdateOp(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update persists and audits", func(t *testing.T) {
		svc, repo, auditor := newPreferenceService()
		userID := uuid.New()
		pref := notification.DefaultPreference(userID)

		repo.On("FindByUser", ctx, userID).Return(pref, nil)
		repo.On("Save", ctx, pref).Return(nil)
		auditor.On("Record", ctx, mock.Anything).Return()

		smsOn := true
		resp, err := svc.Update(ctx, userID, dto.UpdatePreferenceRequest{SMSEnabled: &smsOn})
		require.NoError(t, err)

		assert.True(t, resp.SMSEnabled)
		assert.True(t, resp.EmailEnabled, "untouched fields keep defaults")
		auditor.AssertCalled(t, "Record", ctx, mock.Anything)
	})

	t.Run("first update materializes defaults row", func(t *testing.T) {
		svc, repo, auditor := newPreferenceService()
		userID := uuid.New()

		repo.On("FindByUser", ctx, userID).Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*notification.Preference")).Return(nil)
		auditor.On("Record", ctx, mock.Anything).Return()

		pushOff := false
		resp, err := svc.Update(ctx, userID, dto.UpdatePreferenceRequest{PushEnabled: &pushOff})
		require.NoError(t, err)

		assert.False(t, resp.PushEnabled)
		repo.AssertCalled(t, "Save", ctx, mock.AnythingOfType("*notification.Preference"))
	})

	t.Run("rejects malformed quiet hours", func(t *testing.T) {
		svc, _, _ := newPreferenceService()
		bad := "25:99"

		_, err := svc.Update(ctx, uuid.New(), dto.UpdatePreferenceRequest{QuietHoursStart: &bad})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUIET_HOURS", domainErr.Code)
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		svc, _, _ := newPreferenceService()
		bad := "Mars/Olympus"

		_, err := svc.Update(ctx, uuid.New(), dto.UpdatePreferenceRequest{Timezone: &bad})
		require.Error(t, err)
	})

	t.Run("rejects unknown notification type", func(t *testing.T) {
		svc, _, _ := newPreferenceService()
		types := []string{"PAYMENT_CREATED", "NOT_A_TYPE"}

		_, err := svc.Update(ctx, uuid.New(), dto.UpdatePreferenceRequest{EnabledTypes: &types})
		require.Error(t, err)
	})
}

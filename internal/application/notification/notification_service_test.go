package notification

import (
	"context"
	"strings"
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

func newInboxService() (*NotificationService, *MockNotificationRepository) {
	repo := new(MockNotificationRepository)
	return NewNotificationService(repo, zap.NewNop()), repo
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a page with totals", func(t *testing.T) {
		svc, repo := newInboxService()
		userID := uuid.New()
		rows := []*notification.Notification{
			notification.New(userID, notification.TypePaymentCreated, notification.PriorityHigh, "A", "a"),
			notification.New(userID, notification.TypeAnnouncement, notification.PriorityLow, "B", "b"),
		}
		repo.On("FindByUser", ctx, userID, mock.Anything).Return(rows, int64(42), nil)

		resp, err := svc.List(ctx, userID, dto.ListFilter{Page: 1, PageSize: 20})
		require.NoError(t, err)

		assert.Len(t, resp.Notifications, 2)
		assert.Equal(t, int64(42), resp.Total)
		assert.Equal(t, 3, resp.TotalPages)
	})

	t.Run("rejects unknown type filter", func(t *testing.T) {
		svc, _ := newInboxService()
		bad := "NOT_A_TYPE"

		_, err := svc.List(ctx, uuid.New(), dto.ListFilter{Page: 1, PageSize: 20, Type: &bad})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NOTIFICATION_TYPE", domainErr.Code)
	})
}

func TestMarkReadOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("owner marks read and persists", func(t *testing.T) {
		svc, repo := newInboxService()
		userID := uuid.New()
		n := notification.New(userID, notification.TypePaymentCreated, notification.PriorityHigh, "T", "m")

		repo.On("FindByID", ctx, n.ID).Return(n, nil)
		repo.On("Save", ctx, n).Return(nil)

		resp, err := svc.MarkRead(ctx, userID, n.ID)
		require.NoError(t, err)

		assert.True(t, resp.Read)
		assert.NotNil(t, resp.ReadAt)
		assert.True(t, resp.Sent)
	})

	t.Run("foreign notification is an authorization error", func(t *testing.T) {
		svc, repo := newInboxService()
		n := notification.New(uuid.New(), notification.TypePaymentCreated, notification.PriorityHigh, "T", "m")

		repo.On("FindByID", ctx, n.ID).Return(n, nil)

		_, err := svc.MarkRead(ctx, uuid.New(), n.ID)
		assert.ErrorIs(t, err, notification.ErrNotOwner)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing notification is not found", func(t *testing.T) {
		svc, repo := newInboxService()
		id := uuid.New()

		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.MarkRead(ctx, uuid.New(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc, repo := newInboxService()
	userID := uuid.New()
	rows := []*notification.Notification{
		notification.New(userID, notification.TypePaymentCreated, notification.PriorityHigh, "A", "a"),
		notification.New(userID, notification.TypeSystemUpdate, notification.PriorityLow, "B", "b"),
	}

	repo.On("FindUnreadByUser", ctx, userID).Return(rows, nil)
	repo.On("SaveAll", ctx, rows).Return(nil)

	resp, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Affected)
	for _, n := range rows {
		assert.True(t, n.Read)
		assert.True(t, n.Sent)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner soft-deletes", func(t *testing.T) {
		svc, repo := newInboxService()
		userID := uuid.New()
		n := notification.New(userID, notification.TypeAnnouncement, notification.PriorityLow, "T", "m")

		repo.On("FindByID", ctx, n.ID).Return(n, nil)
		repo.On("Save", ctx, n).Return(nil)

		require.NoError(t, svc.Delete(ctx, userID, n.ID))
		assert.False(t, n.Active)
	})

	t.Run("foreign notification is an authorization error", func(t *testing.T) {
		svc, repo := newInboxService()
		n := notification.New(uuid.New(), notification.TypeAnnouncement, notification.PriorityLow, "T", "m")

		repo.On("FindByID", ctx, n.ID).Return(n, nil)

		err := svc.Delete(ctx, uuid.New(), n.ID)
		assert.ErrorIs(t, err, notification.ErrNotOwner)
		assert.True(t, n.Active)
	})
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newInboxService()
	userID := uuid.New()
	owned := notification.New(userID, notification.TypePaymentCreated, notification.PriorityHigh, "A", "a")
	ids := []uuid.UUID{owned.ID, uuid.New(), uuid.New()}

	// only the owned row comes back; foreign and missing IDs are skipped
	repo.On("FindByIDsForUser", ctx, userID, ids).Return([]*notification.Notification{owned}, nil)
	repo.On("SaveAll", ctx, mock.Anything).Return(nil)

	resp, err := svc.BulkDelete(ctx, userID, ids)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Affected)
	assert.False(t, owned.Active)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, repo := newInboxService()
	userID := uuid.New()

	repo.On("CountByUser", ctx, userID).Return(int64(10), nil)
	repo.On("CountUnreadByUser", ctx, userID).Return(int64(4), nil)
	repo.On("CountReadByUser", ctx, userID).Return(int64(6), nil)
	repo.On("CountCreatedBetween", ctx, userID, mock.Anything, mock.Anything).Return(int64(2), nil).Twice()
	repo.On("TypeBreakdown", ctx, userID).Return(map[notification.Type]int64{
		notification.TypePaymentCreated: 7,
		notification.TypeAnnouncement:   3,
	}, nil)

	resp, err := svc.Stats(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.Total)
	assert.Equal(t, int64(4), resp.Unread)
	assert.Equal(t, int64(6), resp.Read)
	assert.Equal(t, int64(7), resp.ByType["PAYMENT_CREATED"])
}

func TestSearchRanking(t *testing.T) {
	ctx := context.Background()
	svc, repo := newInboxService()
	userID := uuid.New()

	titleHit := notification.New(userID, notification.TypePaymentCreated, notification.PriorityHigh,
		"Payment received", "Your payment was processed")
	weakHit := notification.New(userID, notification.TypeAnnouncement, notification.PriorityLow,
		"Office notice", "Parking payment machines replaced")

	repo.On("Search", ctx, userID, "payment received", mock.Anything).
		Return([]*notification.Notification{weakHit, titleHit}, int64(2), nil)

	resp, err := svc.Search(ctx, userID, dto.SearchFilter{Query: "payment received", Page: 1, PageSize: 20})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, titleHit.ID, resp.Results[0].Notification.ID)
	assert.GreaterOrEqual(t, resp.Results[0].Relevance, resp.Results[1].Relevance)
	assert.LessOrEqual(t, resp.Results[0].Relevance, 1.0)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	svc, repo := newInboxService()
	userID := uuid.New()
	n := notification.New(userID, notification.TypePaymentCreated, notification.PriorityHigh,
		"Payment, received", "line1\nline2")

	repo.On("FindByUser", ctx, userID, mock.Anything).
		Return([]*notification.Notification{n}, int64(1), nil)

	out, err := svc.ExportCSV(ctx, userID)
	require.NoError(t, err)

	text := string(out)
	lines := strings.SplitN(text, "\n", 2)
	assert.Equal(t, "id,type,priority,title,message,read,sent,created_at", lines[0])
	// fields with commas and newlines stay quoted
	assert.Contains(t, text, `"Payment, received"`)
	assert.Contains(t, text, `"line1`)
}

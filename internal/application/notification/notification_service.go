package notification

import (
	"bytes"
	"context"
	"encoding/csv"
	"sort"
	"strconv"
	"time"

	"github.com/erp/notify/internal/application/notification/dto"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/domain/search"
	"github.com/erp/notify/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService handles the user-facing notification inbox: listing,
// read state, stats, search, and export. Every operation is scoped to the
// acting user; rows belonging to other users are invisible, not forbidden.
type NotificationService struct {
	notifRepo notification.Repository
	logger    *zap.Logger
}

// NewNotificationService creates a notification inbox service
func NewNotificationService(notifRepo notification.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		logger:    logger,
	}
}

// List returns a page of the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) (*dto.ListResponse, error) {
	q := notification.Query{
		Read: filter.Read,
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
	}
	if filter.Type != nil {
		typ := notification.Type(*filter.Type)
		if !typ.IsValid() {
			return nil, shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type")
		}
		q.Type = &typ
	}
	if filter.Priority != nil {
		prio := notification.Priority(*filter.Priority)
		if !prio.IsValid() {
			return nil, shared.NewDomainError("INVALID_PRIORITY", "Unknown priority")
		}
		q.Priority = &prio
	}

	ns, total, err := s.notifRepo.FindByUser(ctx, userID, q)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list notifications")
	}

	return dto.NewListResponse(ns, total, filter.Page, filter.PageSize), nil
}

// Get returns one notification owned by the user
func (s *NotificationService) Get(ctx context.Context, userID, id uuid.UUID) (*dto.NotificationResponse, error) {
	n, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return dto.ToNotificationResponse(n), nil
}

// UnreadCount returns the badge count for the user's notification bell
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	count, err := s.notifRepo.CountUnreadByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count unread notifications")
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

// Stats summarizes the user's notification activity
func (s *NotificationService) Stats(ctx context.Context, userID uuid.UUID) (*dto.StatsResponse, error) {
	total, err := s.notifRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute notification stats")
	}
	unread, err := s.notifRepo.CountUnreadByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute notification stats")
	}
	read, err := s.notifRepo.CountReadByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute notification stats")
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.notifRepo.CountCreatedBetween(ctx, userID, startOfDay, now)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute notification stats")
	}

	// Week starts Monday
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	startOfWeek := startOfDay.AddDate(0, 0, -(weekday - 1))
	thisWeek, err := s.notifRepo.CountCreatedBetween(ctx, userID, startOfWeek, now)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute notification stats")
	}

	breakdown, err := s.notifRepo.TypeBreakdown(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute notification stats")
	}
	byType := make(map[string]int64, len(breakdown))
	for typ, count := range breakdown {
		byType[string(typ)] = count
	}

	return &dto.StatsResponse{
		Total:    total,
		Unread:   unread,
		Read:     read,
		Today:    today,
		ThisWeek: thisWeek,
		ByType:   byType,
	}, nil
}

// MarkRead marks one notification as read on behalf of its owner
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*dto.NotificationResponse, error) {
	n, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := n.MarkReadBy(userID); err != nil {
		return nil, err
	}
	if err := s.notifRepo.Save(ctx, n); err != nil {
		s.logger.Error("Failed to persist read state", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to mark notification read")
	}

	return dto.ToNotificationResponse(n), nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many were touched
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (*dto.BulkResultResponse, error) {
	unread, err := s.notifRepo.FindUnreadByUser(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load unread notifications")
	}

	for _, n := range unread {
		if err := n.MarkReadBy(userID); err != nil {
			// FindUnreadByUser is already user-scoped; a mismatch here
			// means the query is broken, not the request.
			s.logger.Error("Unread query returned foreign notification",
				zap.String("notification_id", n.ID.String()),
				zap.String("user_id", userID.String()))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to mark notifications read")
		}
	}
	if err := s.notifRepo.SaveAll(ctx, unread); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to mark notifications read")
	}

	return &dto.BulkResultResponse{Affected: int64(len(unread))}, nil
}

// Delete soft-deletes one notification owned by the user
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := n.DeactivateBy(userID); err != nil {
		return err
	}
	if err := s.notifRepo.Save(ctx, n); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete notification")
	}
	return nil
}

// BulkDelete soft-deletes several notifications. IDs that do not exist or
// belong to someone else are silently skipped; the count reflects rows
// actually touched.
func (s *NotificationService) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*dto.BulkResultResponse, error) {
	ns, err := s.notifRepo.FindByIDsForUser(ctx, userID, ids)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load notifications")
	}

	for _, n := range ns {
		if err := n.DeactivateBy(userID); err != nil {
			return nil, err
		}
	}
	if err := s.notifRepo.SaveAll(ctx, ns); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to delete notifications")
	}

	return &dto.BulkResultResponse{Affected: int64(len(ns))}, nil
}

// Search finds the user's notifications matching a query, ranked by
// relevance. Storage does the coarse text filter; scoring and ordering
// happen here.
func (s *NotificationService) Search(ctx context.Context, userID uuid.UUID, filter dto.SearchFilter) (*dto.SearchResponse, error) {
	ns, total, err := s.notifRepo.Search(ctx, userID, filter.Query, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		s.logger.Error("Notification search failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Search failed")
	}

	fields := search.DefaultFields()
	now := time.Now()

	results := make([]dto.SearchResultResponse, 0, len(ns))
	for _, n := range ns {
		entity := &searchableNotification{n}
		score := search.Score(entity, filter.Query, fields) * search.Boost(entity, now)
		if score > 1.0 {
			score = 1.0
		}
		results = append(results, dto.SearchResultResponse{
			Notification: *dto.ToNotificationResponse(n),
			Relevance:    score,
			Summary:      search.Summary(entity),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	return &dto.SearchResponse{
		Results: results,
		Total:   total,
		Page:    filter.Page,
	}, nil
}

// ExportCSV writes all of the user's notifications as CSV for download
func (s *NotificationService) ExportCSV(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	ns, _, err := s.notifRepo.FindByUser(ctx, userID, notification.Query{
		Filter: shared.Filter{Page: 1, PageSize: exportPageSize},
	})
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to export notifications")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "type", "priority", "title", "message", "read", "sent", "created_at"}
	if err := w.Write(header); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to export notifications")
	}

	for _, n := range ns {
		record := []string{
			n.ID.String(),
			string(n.Type),
			string(n.Priority),
			n.Title,
			n.Message,
			strconv.FormatBool(n.Read),
			strconv.FormatBool(n.Sent),
			n.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to export notifications")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to export notifications")
	}
	return buf.Bytes(), nil
}

const exportPageSize = 10000

// findOwned loads an active notification and checks it belongs to the user.
// Touching someone else's notification is an authorization error, not a
// missing row.
func (s *NotificationService) findOwned(ctx context.Context, userID, id uuid.UUID) (*notification.Notification, error) {
	n, err := s.notifRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, notification.ErrNotOwner
	}
	return n, nil
}

// searchableNotification adapts a notification row to the universal search
// contract
type searchableNotification struct {
	*notification.Notification
}

func (n *searchableNotification) SearchID() uuid.UUID      { return n.ID }
func (n *searchableNotification) SearchEntityType() string { return "NOTIFICATION" }
func (n *searchableNotification) SearchTitle() string      { return n.Title }
func (n *searchableNotification) SearchDescription() string {
	return n.Message
}
func (n *searchableNotification) SearchContent() string {
	return n.Title + " " + n.Message
}
func (n *searchableNotification) SearchKeywords() []string {
	return []string{string(n.Type), string(n.Priority)}
}
func (n *searchableNotification) SearchOwnerName() string { return "" }
func (n *searchableNotification) SearchStatus() string {
	if n.Read {
		return "READ"
	}
	return "ACTIVE"
}
func (n *searchableNotification) SearchCreatedAt() time.Time { return n.CreatedAt }

package handler

import (
	"net/http"
	"time"

	appnotification "github.com/erp/notify/internal/application/notification"
	appdto "github.com/erp/notify/internal/application/notification/dto"
	"github.com/erp/notify/internal/domain/notification"
	"github.com/erp/notify/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles notification API endpoints
type NotificationHandler struct {
	BaseHandler
	notificationService *appnotification.NotificationService
	dispatchService     *appnotification.DispatchService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	notificationService *appnotification.NotificationService,
	dispatchService *appnotification.DispatchService,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		dispatchService:     dispatchService,
	}
}

// List returns a page of the caller's notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appdto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.notificationService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Notifications, result.Total, result.Page, result.PageSize)
}

// Get returns one of the caller's notifications by ID
func (h *NotificationHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.notificationService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats returns the caller's notification statistics
func (h *NotificationHandler) Stats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.notificationService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Search returns the caller's notifications ranked by relevance
func (h *NotificationHandler) Search(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appdto.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.notificationService.Search(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Export streams the caller's notifications as CSV
func (h *NotificationHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	data, err := h.notificationService.ExportCSV(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := "notifications-" + time.Now().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// MarkRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.notificationService.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkAllRead marks all of the caller's unread notifications as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete soft-deletes one of the caller's notifications
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// BulkDelete soft-deletes a set of the caller's notifications
func (h *NotificationHandler) BulkDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appdto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.notificationService.BulkDelete(c.Request.Context(), userID, req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Send dispatches a notification to one recipient
func (h *NotificationHandler) Send(c *gin.Context) {
	var req appdto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	typ := notification.Type(req.Type)
	if !typ.IsValid() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "unknown notification type: "+req.Type)
		return
	}

	dispatchReq := appnotification.DispatchRequest{
		UserID:         req.UserID,
		Type:           typ,
		Priority:       notification.ParsePriority(req.Priority),
		Data:           notification.TemplateData(req.Data),
		ActionURL:      req.ActionURL,
		ActionLabel:    req.ActionLabel,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		ScheduledAt:    req.ScheduledAt,
		IdempotencyKey: req.IdempotencyKey,
	}

	// The caller does not wait for channel delivery; failures surface in
	// the logs and the audit trail.
	h.dispatchService.DispatchAsync(dispatchReq)

	h.Accepted(c, appdto.NewSendAcceptedResponse(dispatchReq.UserID, string(typ), string(dispatchReq.Priority)))
}

// SendTest dispatches a test notification to the caller
func (h *NotificationHandler) SendTest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.dispatchService.Dispatch(c.Request.Context(), appnotification.DispatchRequest{
		UserID:   userID,
		Type:     notification.TypeAnnouncement,
		Priority: notification.PriorityNormal,
		Data: notification.TemplateData{
			"title":   "Test Notification",
			"message": "This is a test notification.",
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result.ToResponse())
}

// SendBulk dispatches the same notification to many recipients
func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var req appdto.BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	typ := notification.Type(req.Type)
	if !typ.IsValid() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "unknown notification type: "+req.Type)
		return
	}

	results := h.dispatchService.DispatchBulk(c.Request.Context(), req.UserIDs, appnotification.DispatchRequest{
		Type:        typ,
		Priority:    notification.ParsePriority(req.Priority),
		Data:        notification.TemplateData(req.Data),
		ActionURL:   req.ActionURL,
		ActionLabel: req.ActionLabel,
	})

	h.Success(c, toResultResponses(results))
}

// Broadcast dispatches the same notification to every active user
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req appdto.BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	typ := notification.Type(req.Type)
	if !typ.IsValid() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "unknown notification type: "+req.Type)
		return
	}

	results, err := h.dispatchService.DispatchBroadcast(c.Request.Context(), appnotification.DispatchRequest{
		Type:        typ,
		Priority:    notification.ParsePriority(req.Priority),
		Data:        notification.TemplateData(req.Data),
		ActionURL:   req.ActionURL,
		ActionLabel: req.ActionLabel,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toResultResponses(results))
}

func toResultResponses(results []*appnotification.DispatchResult) []*appdto.DispatchResultResponse {
	out := make([]*appdto.DispatchResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, r.ToResponse())
	}
	return out
}

// parseID binds and parses the :id path parameter
func (h *NotificationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.GET("/stats", h.Stats)
		notifications.GET("/search", h.Search)
		notifications.GET("/export", h.Export)
		notifications.GET("/:id", h.Get)
		notifications.POST("/:id/mark-read", h.MarkRead)
		notifications.POST("/mark-all-read", h.MarkAllRead)
		notifications.DELETE("/:id", h.Delete)
		notifications.POST("/bulk-delete", h.BulkDelete)
		notifications.POST("/send", h.Send)
		notifications.POST("/send-bulk", h.SendBulk)
		notifications.POST("/broadcast", h.Broadcast)
		notifications.POST("/test", h.SendTest)
	}
}

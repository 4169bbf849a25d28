package handler

import (
	appnotification "github.com/erp/notify/internal/application/notification"
	appdto "github.com/erp/notify/internal/application/notification/dto"
	"github.com/gin-gonic/gin"
)

// PreferenceHandler handles notification preference API endpoints
type PreferenceHandler struct {
	BaseHandler
	preferenceService *appnotification.PreferenceService
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(preferenceService *appnotification.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceService: preferenceService,
	}
}

// Get returns the caller's notification preferences, defaults included
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.preferenceService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Update applies a partial update to the caller's preferences
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appdto.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.preferenceService.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers preference routes under the notifications group
func (h *PreferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("/preferences", h.Get)
		notifications.PUT("/preferences", h.Update)
	}
}

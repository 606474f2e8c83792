package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/application/notification"
	"github.com/sgi/backend/internal/interfaces/http/dto"
)

// InboxQuery bounds the unread preview
type InboxQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NotificationHandler serves the caller's notification inbox
type NotificationHandler struct {
	BaseHandler
	notificationService *notification.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Inbox godoc
// @Summary      Notification inbox
// @Description  Latest notifications and the unread count
// @Tags         notifications
// @Produce      json
// @Param        limit query int false "At most 50"
// @Success      200 {object} dto.Response{data=notification.InboxResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/inbox [get]
func (h *NotificationHandler) Inbox(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q InboxQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, bindingError(err))
		return
	}
	resp, err := h.notificationService.Inbox(c.Request.Context(), actor, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List notifications
// @Description  Paginated notifications, newest first
// @Tags         notifications
// @Produce      json
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]notification.NotificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q dto.ListRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, bindingError(err))
		return
	}
	filter := listFilter(q)
	items, total, err := h.notificationService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Description  Marks one of the viewer's notifications as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} dto.Response{data=notification.NotificationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.notificationService.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkAllRead godoc
// @Summary      Mark all notifications read
// @Description  Marks every unread notification of the viewer as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response{data=MarkAllReadResponse}
// @Security     BearerAuth
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MarkAllReadResponse{Updated: n})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/middleware"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// NotificationHandler serves the admin and client inboxes. Every method
// resolves the caller's visibility scope first; rows outside it read as 404.
type NotificationHandler struct {
	notifications *services.NotificationService
	clients       *services.ClientService
}

func NewNotificationHandler(notifications *services.NotificationService, clients *services.ClientService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, clients: clients}
}

func (h *NotificationHandler) adminScope(c *gin.Context) repository.NotificationFilters {
	scope := services.AdminScope(uuidQuery(c, "client_id"))
	scope.Type = models.NotificationType(c.Query("type"))
	scope.IsRead = boolQuery(c, "is_read")
	scope.Limit = intQuery(c, "limit", 0)
	scope.Offset = intQuery(c, "offset", 0)
	return scope
}

func (h *NotificationHandler) clientScope(c *gin.Context) (repository.NotificationFilters, error) {
	profile, err := h.clients.GetByUser(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return repository.NotificationFilters{}, err
	}
	scope := services.ClientScope(profile.ID)
	scope.Type = models.NotificationType(c.Query("type"))
	scope.IsRead = boolQuery(c, "is_read")
	scope.Limit = intQuery(c, "limit", 0)
	scope.Offset = intQuery(c, "offset", 0)
	return scope, nil
}

func (h *NotificationHandler) AdminList(c *gin.Context) {
	notifications, total, err := h.notifications.List(c.Request.Context(), h.adminScope(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"notifications": notifications, "total": total})
}

func (h *NotificationHandler) AdminMarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid notification id", nil)
		return
	}
	notification, err := h.notifications.MarkRead(c.Request.Context(), services.AdminScope(nil), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notification marked read", notification)
}

func (h *NotificationHandler) AdminMarkAllRead(c *gin.Context) {
	count, err := h.notifications.MarkAllRead(c.Request.Context(), h.adminScope(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notifications marked read", gin.H{"updated": count})
}

func (h *NotificationHandler) AdminUnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), services.AdminScope(nil))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"unread_count": count})
}

// SendOffer pushes an offer notification to one client.
func (h *NotificationHandler) SendOffer(c *gin.Context) {
	var input services.SendOfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	notification, err := h.notifications.SendOffer(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Offer sent", notification)
}

func (h *NotificationHandler) AdminDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid notification id", nil)
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), services.AdminScope(nil), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notification deleted", nil)
}

func (h *NotificationHandler) ClientList(c *gin.Context) {
	scope, err := h.clientScope(c)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	notifications, total, err := h.notifications.List(c.Request.Context(), scope)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"notifications": notifications, "total": total})
}

func (h *NotificationHandler) ClientMarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid notification id", nil)
		return
	}
	scope, err := h.clientScope(c)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	notification, err := h.notifications.MarkRead(c.Request.Context(), scope, id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notification marked read", notification)
}

// Acknowledge confirms a change notification was seen.
func (h *NotificationHandler) Acknowledge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid notification id", nil)
		return
	}
	scope, err := h.clientScope(c)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	notification, err := h.notifications.Acknowledge(c.Request.Context(), scope, id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notification acknowledged", notification)
}

type respondOfferRequest struct {
	Accepted *bool `json:"accepted" binding:"required"`
}

// RespondOffer records the client's accept/decline decision on an offer.
func (h *NotificationHandler) RespondOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid notification id", nil)
		return
	}
	var req respondOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "accepted is required", err)
		return
	}
	scope, err := h.clientScope(c)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	notification, err := h.notifications.RespondOffer(c.Request.Context(), scope, id, *req.Accepted)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Offer response recorded", notification)
}

func (h *NotificationHandler) ClientMarkAllRead(c *gin.Context) {
	scope, err := h.clientScope(c)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	count, err := h.notifications.MarkAllRead(c.Request.Context(), scope)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notifications marked read", gin.H{"updated": count})
}

func (h *NotificationHandler) ClientUnreadCount(c *gin.Context) {
	scope, err := h.clientScope(c)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), scope)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"unread_count": count})
}

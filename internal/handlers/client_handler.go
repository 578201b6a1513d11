package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/middleware"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// ClientHandler serves the admin client registry and the client's own
// profile endpoints.
type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// clientListItem is the flat row shape for the registry table.
type clientListItem struct {
	ID                 string      `json:"id"`
	CompanyName        string      `json:"company_name"`
	UserEmail          string      `json:"user_email"`
	UserName           string      `json:"user_name"`
	PlanName           *string     `json:"plan_name"`
	SubscriptionStatus string      `json:"subscription_status"`
	IsActive           bool        `json:"is_active"`
	CreatedAt          interface{} `json:"created_at"`
}

// List returns the client registry with optional is_active and search
// filters.
func (h *ClientHandler) List(c *gin.Context) {
	filters := repository.ClientFilters{
		IsActive: boolQuery(c, "is_active"),
		Search:   c.Query("search"),
		Limit:    intQuery(c, "limit", 0),
		Offset:   intQuery(c, "offset", 0),
	}
	profiles, total, err := h.clients.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	today := models.Today()
	items := make([]clientListItem, 0, len(profiles))
	for _, p := range profiles {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		items = append(items, clientListItem{
			ID:                 p.ID.String(),
			CompanyName:        p.CompanyName,
			UserEmail:          p.User.Email,
			UserName:           p.User.FullName(),
			PlanName:           planName,
			SubscriptionStatus: p.SubscriptionStatus(today),
			IsActive:           p.IsActive,
			CreatedAt:          p.CreatedAt,
		})
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"clients": items, "total": total})
}

// Create provisions a client account and profile.
func (h *ClientHandler) Create(c *gin.Context) {
	var input services.CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	profile, err := h.clients.Create(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Client created", profile)
}

// Get returns the admin drill-down for one client.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	detail, err := h.clients.Detail(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", detail)
}

// Update applies an admin edit, running the change-tracking pipeline.
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	var input services.UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	profile, err := h.clients.Update(c.Request.Context(), middleware.CurrentUser(c), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Client updated", profile)
}

// Delete removes the client profile and its user account.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Client deleted", nil)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetPassword lets an admin set a new password for a client account.
func (h *ClientHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.clients.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Password reset", nil)
}

// Profile returns the caller's own client profile. Admin-only notes are
// stripped from the payload.
func (h *ClientHandler) Profile(c *gin.Context) {
	profile, err := h.clients.GetByUser(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	profile.Notes = ""
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"profile":             profile,
		"subscription_status": profile.SubscriptionStatus(models.Today()),
	})
}

// UpdateProfile applies a client's own edit, notifying the admin team about
// tracked changes.
func (h *ClientHandler) UpdateProfile(c *gin.Context) {
	var input services.SelfUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	profile, err := h.clients.SelfUpdate(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	profile.Notes = ""
	SuccessResponse(c, http.StatusOK, "Profile updated", profile)
}

// Keywords returns the caller's trend-enriched keyword list.
func (h *ClientHandler) Keywords(c *gin.Context) {
	profile, err := h.clients.GetByUser(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	views, err := h.clients.KeywordViews(c.Request.Context(), profile.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", views)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// PlanHandler serves the admin plan catalog.
type PlanHandler struct {
	plans *services.PlanService
}

func NewPlanHandler(plans *services.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

func (h *PlanHandler) List(c *gin.Context) {
	activeOnly := false
	if v := boolQuery(c, "is_active"); v != nil {
		activeOnly = *v
	}
	plans, err := h.plans.List(c.Request.Context(), activeOnly)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", plans)
}

func (h *PlanHandler) Create(c *gin.Context) {
	var input services.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Plan created", plan)
}

func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	plan, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", plan)
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	var input services.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Plan updated", plan)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Plan deleted", nil)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// TaskHandler serves the admin task board and the client task view.
type TaskHandler struct {
	tasks   *services.TaskService
	clients *services.ClientService
}

func NewTaskHandler(tasks *services.TaskService, clients *services.ClientService) *TaskHandler {
	return &TaskHandler{tasks: tasks, clients: clients}
}

func taskFiltersFromQuery(c *gin.Context) repository.TaskFilters {
	filters := repository.TaskFilters{
		ClientID: uuidQuery(c, "client_id"),
		Status:   models.TaskStatus(c.Query("status")),
		Category: models.TaskCategory(c.Query("category")),
		Priority: models.TaskPriority(c.Query("priority")),
	}
	if v := boolQuery(c, "overdue"); v != nil && *v {
		filters.OverdueOnly = true
	}
	return filters
}

func taskViews(tasks []models.Task) []gin.H {
	today := models.Today()
	views := make([]gin.H, 0, len(tasks))
	for i := range tasks {
		views = append(views, gin.H{
			"task":       tasks[i],
			"is_overdue": tasks[i].IsOverdue(today),
		})
	}
	return views
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), taskFiltersFromQuery(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", taskViews(tasks))
}

func (h *TaskHandler) Create(c *gin.Context) {
	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Task created", task)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"task":       task,
		"is_overdue": task.IsOverdue(models.Today()),
	})
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var input services.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Task updated", task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Task deleted", nil)
}

type markCompletedRequest struct {
	CompletedDate *models.Date `json:"completed_date"`
}

func (h *TaskHandler) MarkCompleted(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req markCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	task, err := h.tasks.MarkCompleted(c.Request.Context(), id, req.CompletedDate)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Task completed", task)
}

func (h *TaskHandler) MarkInProgress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	task, err := h.tasks.MarkInProgress(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Task in progress", task)
}

func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.tasks.Stats(c.Request.Context(), taskFiltersFromQuery(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}

// ClientList returns the caller's own task board.
func (h *TaskHandler) ClientList(c *gin.Context) {
	profile, err := h.clients.GetByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	filters := repository.TaskFilters{
		ClientID: &profile.ID,
		Status:   models.TaskStatus(c.Query("status")),
	}
	tasks, err := h.tasks.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", taskViews(tasks))
}

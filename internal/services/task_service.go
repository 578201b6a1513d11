package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

// CreateTaskInput is the admin payload for a new work item.
type CreateTaskInput struct {
	ClientID    uuid.UUID           `json:"client_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Category    models.TaskCategory `json:"category"`
	DueDate     *models.Date        `json:"due_date"`
	Order       int                 `json:"order"`
}

// UpdateTaskInput is the patch payload.
type UpdateTaskInput struct {
	Title         *string              `json:"title"`
	Description   *string              `json:"description"`
	Status        *models.TaskStatus   `json:"status"`
	Priority      *models.TaskPriority `json:"priority"`
	Category      *models.TaskCategory `json:"category"`
	DueDate       *models.Date         `json:"due_date"`
	CompletedDate *models.Date         `json:"completed_date"`
	Order         *int                 `json:"order"`
}

// TaskStats is the board roll-up for the admin view.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	OnHold     int64 `json:"on_hold"`
	Overdue    int64 `json:"overdue"`
}

type TaskService struct {
	tasks   *repository.TaskRepository
	clients *repository.ClientRepository
	logger  *logrus.Logger
}

func NewTaskService(tasks *repository.TaskRepository, clients *repository.ClientRepository, logger *logrus.Logger) *TaskService {
	return &TaskService{
		tasks:   tasks,
		clients: clients,
		logger:  logger,
	}
}

func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	task := &models.Task{
		ClientID:    input.ClientID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskPending,
		Priority:    models.PriorityMedium,
		Category:    models.CategoryOther,
		DueDate:     input.DueDate,
		Order:       input.Order,
	}
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Category != "" {
		task.Category = input.Category
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("task")
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, filters repository.TaskFilters) ([]models.Task, error) {
	if filters.OverdueOnly && filters.Today.IsZero() {
		filters.Today = models.Today()
	}
	return s.tasks.List(ctx, filters)
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.CompletedDate != nil {
		task.CompletedDate = input.CompletedDate
	}
	if input.Order != nil {
		task.Order = *input.Order
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// MarkCompleted closes a task, defaulting the completion date to today.
func (s *TaskService) MarkCompleted(ctx context.Context, id uuid.UUID, completedDate *models.Date) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	when := models.Today()
	if completedDate != nil {
		when = *completedDate
	}
	task.Status = models.TaskCompleted
	task.CompletedDate = &when
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// MarkInProgress reopens a task; a stale completion date is cleared.
func (s *TaskService) MarkInProgress(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Status = models.TaskInProgress
	task.CompletedDate = nil
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Stats aggregates the board by status within the given filter set.
func (s *TaskService) Stats(ctx context.Context, filters repository.TaskFilters) (*TaskStats, error) {
	if filters.Today.IsZero() {
		filters.Today = models.Today()
	}
	stats := &TaskStats{}

	count := func(status models.TaskStatus) (int64, error) {
		f := filters
		f.Status = status
		f.OverdueOnly = false
		return s.tasks.Count(ctx, f)
	}

	var err error
	base := filters
	base.Status = ""
	base.OverdueOnly = false
	if stats.Total, err = s.tasks.Count(ctx, base); err != nil {
		return nil, err
	}
	if stats.Pending, err = count(models.TaskPending); err != nil {
		return nil, err
	}
	if stats.InProgress, err = count(models.TaskInProgress); err != nil {
		return nil, err
	}
	if stats.Completed, err = count(models.TaskCompleted); err != nil {
		return nil, err
	}
	if stats.OnHold, err = count(models.TaskOnHold); err != nil {
		return nil, err
	}

	overdue := filters
	overdue.Status = ""
	overdue.OverdueOnly = true
	if stats.Overdue, err = s.tasks.Count(ctx, overdue); err != nil {
		return nil, err
	}
	return stats, nil
}

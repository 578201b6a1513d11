package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

// PlanInput covers create and update of service plans.
type PlanInput struct {
	Name        string             `json:"name"`
	PlanType    models.PlanType    `json:"plan_type"`
	Description string             `json:"description"`
	Price       *decimal.Decimal   `json:"price"`
	IsRecurring *bool              `json:"is_recurring"`
	Features    *models.StringList `json:"features"`
	IsActive    *bool              `json:"is_active"`
}

type PlanService struct {
	plans *repository.PlanRepository
}

func NewPlanService(plans *repository.PlanRepository) *PlanService {
	return &PlanService{plans: plans}
}

func (s *PlanService) Create(ctx context.Context, input PlanInput) (*models.Plan, error) {
	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "name is required"
	}
	if input.Price == nil {
		fields["price"] = "price is required"
	} else if input.Price.IsNegative() {
		fields["price"] = "price cannot be negative"
	}
	if len(fields) > 0 {
		return nil, NewValidationErrors(fields)
	}

	plan := &models.Plan{
		Name:        input.Name,
		PlanType:    models.PlanCustom,
		Description: input.Description,
		Price:       *input.Price,
		IsRecurring: true,
		IsActive:    true,
	}
	if input.PlanType != "" {
		plan.PlanType = input.PlanType
	}
	if input.IsRecurring != nil {
		plan.IsRecurring = *input.IsRecurring
	}
	if input.Features != nil {
		plan.Features = *input.Features
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("plan")
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, nil
}

func (s *PlanService) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	return s.plans.List(ctx, activeOnly)
}

func (s *PlanService) Update(ctx context.Context, id uuid.UUID, input PlanInput) (*models.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		plan.Name = input.Name
	}
	if input.PlanType != "" {
		plan.PlanType = input.PlanType
	}
	if input.Description != "" {
		plan.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, NewValidationError("price", "price cannot be negative")
		}
		plan.Price = *input.Price
	}
	if input.IsRecurring != nil {
		plan.IsRecurring = *input.IsRecurring
	}
	if input.Features != nil {
		plan.Features = *input.Features
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.plans.Delete(ctx, id)
}

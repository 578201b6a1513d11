package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

// ClientFilters narrows client listings.
type ClientFilters struct {
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, profile *models.ClientProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create client profile: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Plan").
		First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ClientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Plan").
		First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ClientRepository) List(ctx context.Context, filters ClientFilters) ([]models.ClientProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientProfile{}).
		Preload("User").
		Preload("Plan")

	if filters.IsActive != nil {
		query = query.Where("client_profiles.is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.
			Joins("JOIN users ON users.id = client_profiles.user_id").
			Where("client_profiles.company_name LIKE ? OR users.email LIKE ? OR users.first_name LIKE ? OR users.last_name LIKE ?",
				pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var profiles []models.ClientProfile
	if err := query.Order("client_profiles.created_at DESC").Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return profiles, total, nil
}

func (r *ClientRepository) Update(ctx context.Context, profile *models.ClientProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update client profile: %w", err)
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.ClientProfile{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete client profile: %w", err)
	}
	return nil
}

func (r *ClientRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientProfile{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return count, nil
}

func (r *ClientRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientProfile{}).
		Where("is_active = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active clients: %w", err)
	}
	return count, nil
}

func (r *ClientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientProfile{}).
		Where("created_at >= ?", since).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count new clients: %w", err)
	}
	return count, nil
}

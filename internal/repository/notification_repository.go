package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

// NotificationFilters selects inbox rows. Audience is always set; ClientID is
// mandatory for the client inbox and optional for admins drilling into one
// client.
type NotificationFilters struct {
	Audience models.TargetAudience
	ClientID *uuid.UUID
	Type     models.NotificationType
	IsRead   *bool
	Limit    int
	Offset   int
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) scope(ctx context.Context, filters NotificationFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("target_audience = ?", filters.Audience)
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.Type != "" {
		query = query.Where("notification_type = ?", filters.Type)
	}
	if filters.IsRead != nil {
		query = query.Where("is_read = ?", *filters.IsRead)
	}
	return query
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetVisible fetches a notification only when it falls inside the caller's
// inbox scope; anything else reads as not found.
func (r *NotificationRepository) GetVisible(ctx context.Context, id uuid.UUID, filters NotificationFilters) (*models.Notification, error) {
	var notification models.Notification
	if err := r.scope(ctx, filters).First(&notification, "notifications.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) List(ctx context.Context, filters NotificationFilters) ([]models.Notification, int64, error) {
	query := r.scope(ctx, filters).Preload("Client").Preload("Client.User")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *NotificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// MarkAllAsRead flips every unread row in scope and returns how many changed.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, filters NotificationFilters) (int64, error) {
	unread := false
	filters.IsRead = &unread
	result := r.scope(ctx, filters).Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, filters NotificationFilters) (int64, error) {
	unread := false
	filters.IsRead = &unread
	var count int64
	if err := r.scope(ctx, filters).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

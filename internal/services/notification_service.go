package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

const defaultOfferDays = 7

// SendOfferInput is the admin payload for pushing an offer to one client.
type SendOfferInput struct {
	ClientID      uuid.UUID    `json:"client_id"`
	Title         string       `json:"title"`
	Message       string       `json:"message"`
	OfferDetails  models.JSONB `json:"offer_details"`
	ExpiresInDays int          `json:"expires_in_days"`
}

type NotificationService struct {
	db            *gorm.DB
	notifications *repository.NotificationRepository
	clients       *repository.ClientRepository
	logger        *logrus.Logger
}

func NewNotificationService(db *gorm.DB, notifications *repository.NotificationRepository, clients *repository.ClientRepository, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		db:            db,
		notifications: notifications,
		clients:       clients,
		logger:        logger,
	}
}

// AdminScope is the admin inbox, optionally narrowed to one client.
func AdminScope(clientID *uuid.UUID) repository.NotificationFilters {
	return repository.NotificationFilters{Audience: models.AudienceAdmin, ClientID: clientID}
}

// ClientScope is the inbox of one client profile.
func ClientScope(profileID uuid.UUID) repository.NotificationFilters {
	return repository.NotificationFilters{Audience: models.AudienceClient, ClientID: &profileID}
}

func (s *NotificationService) List(ctx context.Context, scope repository.NotificationFilters) ([]models.Notification, int64, error) {
	return s.notifications.List(ctx, scope)
}

func (s *NotificationService) getVisible(ctx context.Context, scope repository.NotificationFilters, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.notifications.GetVisible(ctx, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("notification")
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	return notification, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, scope repository.NotificationFilters, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.getVisible(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !notification.IsRead {
		notification.IsRead = true
		if err := s.notifications.Update(ctx, notification); err != nil {
			return nil, err
		}
	}
	return notification, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, scope repository.NotificationFilters) (int64, error) {
	return s.notifications.MarkAllAsRead(ctx, scope)
}

func (s *NotificationService) UnreadCount(ctx context.Context, scope repository.NotificationFilters) (int64, error) {
	return s.notifications.UnreadCount(ctx, scope)
}

// Acknowledge records that the client has seen a change notification. Only
// profile/business change rows can be acknowledged.
func (s *NotificationService) Acknowledge(ctx context.Context, scope repository.NotificationFilters, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.getVisible(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !notification.CanAcknowledge() {
		return nil, NewStateError("only profile and business change notifications can be acknowledged")
	}
	now := time.Now()
	notification.IsAcknowledged = true
	notification.AcknowledgedAt = &now
	notification.IsRead = true
	if err := s.notifications.Update(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// RespondOffer records accept/decline on an offer and raises the admin-side
// follow-up in the same transaction.
func (s *NotificationService) RespondOffer(ctx context.Context, scope repository.NotificationFilters, id uuid.UUID, accepted bool) (*models.Notification, error) {
	notification, err := s.getVisible(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !notification.IsOffer() {
		return nil, NewStateError("only offer notifications can be responded to")
	}

	profile, err := s.clients.GetByID(ctx, notification.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	now := time.Now()
	notification.OfferAccepted = &accepted
	notification.OfferRespondedAt = &now
	notification.IsRead = true

	verb := "declined"
	title := "Offer Declined"
	if accepted {
		verb = "accepted"
		title = "Offer Accepted"
	}
	followUp := &models.Notification{
		ClientID:         notification.ClientID,
		NotificationType: models.NotificationOffer,
		TargetAudience:   models.AudienceAdmin,
		Title:            title,
		Message:          fmt.Sprintf("%s has %s the offer: %s", profile.CompanyName, verb, notification.Title),
		OfferDetails:     notification.OfferDetails,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(notification).Error; err != nil {
			return fmt.Errorf("failed to update offer: %w", err)
		}
		if err := tx.Create(followUp).Error; err != nil {
			return fmt.Errorf("failed to create offer response notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"notification_id": notification.ID,
		"client_id":       notification.ClientID,
		"accepted":        accepted,
	}).Info("Offer response recorded")
	return notification, nil
}

// SendOffer creates a client-facing offer notification.
func (s *NotificationService) SendOffer(ctx context.Context, actor *models.User, input SendOfferInput) (*models.Notification, error) {
	if input.Title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	profile, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	days := input.ExpiresInDays
	if days <= 0 {
		days = defaultOfferDays
	}
	expiresAt := time.Now().AddDate(0, 0, days)
	actorID := actor.ID

	notification := &models.Notification{
		ClientID:         profile.ID,
		NotificationType: models.NotificationOffer,
		TargetAudience:   models.AudienceClient,
		Title:            input.Title,
		Message:          input.Message,
		OfferDetails:     input.OfferDetails,
		OfferExpiresAt:   &expiresAt,
		ChangedByID:      &actorID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"notification_id": notification.ID,
		"client_id":       profile.ID,
	}).Info("Offer sent")
	return notification, nil
}

func (s *NotificationService) Delete(ctx context.Context, scope repository.NotificationFilters, id uuid.UUID) error {
	notification, err := s.getVisible(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.notifications.Delete(ctx, notification.ID)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationProfileChange  NotificationType = "profile_change"
	NotificationBusinessChange NotificationType = "business_change"
	NotificationOffer          NotificationType = "offer"
	NotificationPayment        NotificationType = "payment"
	NotificationTask           NotificationType = "task"
	NotificationReport         NotificationType = "report"
)

type TargetAudience string

const (
	AudienceClient TargetAudience = "client"
	AudienceAdmin  TargetAudience = "admin"
)

// Notification is a polled inbox row. Rows target either the admin team or
// the client owning the referenced profile; the two inboxes never overlap.
type Notification struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID     `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   ClientProfile `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`

	NotificationType NotificationType `gorm:"size:20;not null;index" json:"notification_type"`
	TargetAudience   TargetAudience   `gorm:"size:10;not null;default:'admin';index" json:"target_audience"`
	Title            string           `gorm:"size:255;not null" json:"title"`
	Message          string           `gorm:"type:text" json:"message"`

	ChangedFields StringList `gorm:"type:jsonb" json:"changed_fields"`
	OldValues     JSONB      `gorm:"type:jsonb" json:"old_values"`
	NewValues     JSONB      `gorm:"type:jsonb" json:"new_values"`
	ChangedByID   *uuid.UUID `gorm:"type:uuid" json:"changed_by_id"`
	ChangedBy     *User      `gorm:"foreignKey:ChangedByID;constraint:OnDelete:SET NULL" json:"changed_by,omitempty"`

	IsRead         bool       `gorm:"not null;default:false;index" json:"is_read"`
	IsAcknowledged bool       `gorm:"not null;default:false" json:"is_acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`

	OfferDetails     JSONB      `gorm:"type:jsonb" json:"offer_details"`
	OfferExpiresAt   *time.Time `json:"offer_expires_at"`
	OfferAccepted    *bool      `json:"offer_accepted"`
	OfferRespondedAt *time.Time `json:"offer_responded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// CanAcknowledge limits acknowledgement to change notifications; offers go
// through RespondOffer instead.
func (n *Notification) CanAcknowledge() bool {
	return n.NotificationType == NotificationProfileChange ||
		n.NotificationType == NotificationBusinessChange
}

func (n *Notification) IsOffer() bool {
	return n.NotificationType == NotificationOffer
}

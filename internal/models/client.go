package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription status values derived from plan assignment and end date.
const (
	SubscriptionNoPlan  = "no_plan"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// ClientProfile holds the business data for a client account, 1:1 with its
// User row. Notes are admin-only and never exposed to the client.
type ClientProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`

	CompanyName string `gorm:"size:255;not null" json:"company_name"`
	WebsiteURL  string `gorm:"size:255" json:"website_url"`
	Industry    string `gorm:"size:100" json:"industry"`
	Address     string `gorm:"type:text" json:"address"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:100" json:"state"`
	Country     string `gorm:"size:100" json:"country"`
	PostalCode  string `gorm:"size:20" json:"postal_code"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	PlanID                *uuid.UUID `gorm:"type:uuid;index" json:"plan_id"`
	Plan                  *Plan      `gorm:"foreignKey:PlanID;constraint:OnDelete:SET NULL" json:"plan"`
	SubscriptionStartDate *Date      `gorm:"type:date" json:"subscription_start_date"`
	SubscriptionEndDate   *Date      `gorm:"type:date" json:"subscription_end_date"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *ClientProfile) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SubscriptionStatus derives the subscription state for the given day.
// No assigned plan means no_plan; an end date strictly before today means
// expired; everything else is active.
func (c *ClientProfile) SubscriptionStatus(today Date) string {
	if c.PlanID == nil {
		return SubscriptionNoPlan
	}
	if c.SubscriptionEndDate != nil && c.SubscriptionEndDate.Before(today) {
		return SubscriptionExpired
	}
	return SubscriptionActive
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PlanType string

const (
	PlanSEOStarter PlanType = "seo_starter"
	PlanSEOMedium  PlanType = "seo_medium"
	PlanSEOPremium PlanType = "seo_premium"
	PlanWebsite    PlanType = "website"
	PlanCustom     PlanType = "custom"
)

// Plan is a service package clients can be subscribed to.
type Plan struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	PlanType    PlanType        `gorm:"size:20;not null;default:'custom'" json:"plan_type"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	IsRecurring bool            `gorm:"not null;default:true" json:"is_recurring"`
	Features    StringList      `gorm:"type:jsonb" json:"features"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

package models

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethodType string

const (
	MethodBankTransfer PaymentMethodType = "bank_transfer"
	MethodPayPal       PaymentMethodType = "paypal"
	MethodRia          PaymentMethodType = "ria"
	MethodMoneyGram    PaymentMethodType = "moneygram"
	MethodWesternUnion PaymentMethodType = "western_union"
	MethodZelle        PaymentMethodType = "zelle"
	MethodVenmo        PaymentMethodType = "venmo"
	MethodOther        PaymentMethodType = "other"
)

// Payment is one ledger entry (an invoice) for a client.
type Payment struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID     `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   ClientProfile `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	PlanID   *uuid.UUID    `gorm:"type:uuid" json:"plan_id"`
	Plan     *Plan         `gorm:"foreignKey:PlanID;constraint:OnDelete:SET NULL" json:"plan,omitempty"`

	Amount   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status   PaymentStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`

	PaymentMethod       string              `gorm:"size:50" json:"payment_method"`
	PaymentMethodUsedID *uuid.UUID          `gorm:"type:uuid" json:"payment_method_used_id"`
	PaymentMethodUsed   *AdminPaymentMethod `gorm:"foreignKey:PaymentMethodUsedID;constraint:OnDelete:SET NULL" json:"payment_method_used,omitempty"`
	ReferenceNumber     string              `gorm:"size:255" json:"reference_number"`

	DueDate       Date   `gorm:"type:date;not null;index" json:"due_date"`
	PaidDate      *Date  `gorm:"type:date" json:"paid_date"`
	InvoiceNumber string `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	Description   string `gorm:"type:text" json:"description"`
	Notes         string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the invoice is past due: still pending and due
// strictly before today. The stored status is never mutated by the clock.
func (p *Payment) IsOverdue(today Date) bool {
	return p.Status == PaymentPending && p.DueDate.Before(today)
}

// NewInvoiceNumber builds an INV-YYYYMM-XXXXXX invoice number with a random
// six-hex-digit suffix. Callers retry on a unique-index collision.
func NewInvoiceNumber(now time.Time) string {
	u := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(u[:3]))
	return fmt.Sprintf("INV-%s-%s", now.Format("200601"), suffix)
}

// AdminPaymentMethod is a payout channel the agency accepts, shown to clients
// when they report a payment.
type AdminPaymentMethod struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	MethodType   PaymentMethodType `gorm:"size:20;not null;default:'other'" json:"method_type"`
	Name         string            `gorm:"size:100;not null" json:"name"`
	Details      string            `gorm:"type:text" json:"details"`
	IsActive     bool              `gorm:"not null;default:true" json:"is_active"`
	DisplayOrder int               `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (m *AdminPaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

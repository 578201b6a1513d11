package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

const invoiceRetries = 3

// CreatePaymentInput is the admin payload for a new ledger entry.
type CreatePaymentInput struct {
	ClientID      uuid.UUID       `json:"client_id"`
	PlanID        *uuid.UUID      `json:"plan_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	DueDate       *models.Date    `json:"due_date"`
	Description   string          `json:"description"`
	Notes         string          `json:"notes"`
}

// UpdatePaymentInput is the admin patch payload. The invoice number is not
// editable.
type UpdatePaymentInput struct {
	Amount        *decimal.Decimal      `json:"amount"`
	Currency      *string               `json:"currency"`
	Status        *models.PaymentStatus `json:"status"`
	PaymentMethod *string               `json:"payment_method"`
	DueDate       *models.Date          `json:"due_date"`
	PaidDate      *models.Date          `json:"paid_date"`
	Description   *string               `json:"description"`
	Notes         *string               `json:"notes"`
}

// ClientMarkPaidInput is the client payload for reporting a payment.
type ClientMarkPaidInput struct {
	PaymentMethodID uuid.UUID    `json:"payment_method_id"`
	ReferenceNumber string       `json:"reference_number"`
	PaidDate        *models.Date `json:"paid_date"`
}

// PaymentMethodInput covers create and update of payout channels.
type PaymentMethodInput struct {
	MethodType   models.PaymentMethodType `json:"method_type"`
	Name         string                   `json:"name"`
	Details      string                   `json:"details"`
	IsActive     *bool                    `json:"is_active"`
	DisplayOrder *int                     `json:"display_order"`
}

type PaymentService struct {
	db       *gorm.DB
	payments *repository.PaymentRepository
	clients  *repository.ClientRepository
	plans    *repository.PlanRepository
	logger   *logrus.Logger
}

func NewPaymentService(db *gorm.DB, payments *repository.PaymentRepository, clients *repository.ClientRepository, plans *repository.PlanRepository, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		db:       db,
		payments: payments,
		clients:  clients,
		plans:    plans,
		logger:   logger,
	}
}

// Create books a new invoice. The invoice number is generated here and
// retried on the (unlikely) unique-suffix collision.
func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	fields := map[string]string{}
	if !input.Amount.IsPositive() {
		fields["amount"] = "amount must be positive"
	}
	if input.DueDate == nil {
		fields["due_date"] = "due date is required"
	}
	if len(fields) > 0 {
		return nil, NewValidationErrors(fields)
	}

	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	var planID *uuid.UUID
	if input.PlanID != nil {
		if _, err := s.plans.GetByID(ctx, *input.PlanID); err == nil {
			planID = input.PlanID
		}
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	payment := &models.Payment{
		ClientID:      input.ClientID,
		PlanID:        planID,
		Amount:        input.Amount,
		Currency:      currency,
		Status:        models.PaymentPending,
		PaymentMethod: input.PaymentMethod,
		DueDate:       *input.DueDate,
		Description:   input.Description,
		Notes:         input.Notes,
	}

	var lastErr error
	for attempt := 0; attempt < invoiceRetries; attempt++ {
		payment.InvoiceNumber = models.NewInvoiceNumber(time.Now())
		lastErr = s.payments.Create(ctx, payment)
		if lastErr == nil {
			s.logger.WithFields(logrus.Fields{
				"payment_id": payment.ID,
				"invoice":    payment.InvoiceNumber,
			}).Info("Payment created")
			return payment, nil
		}
		if !isDuplicateError(lastErr) {
			return nil, fmt.Errorf("failed to create payment: %w", lastErr)
		}
		payment.ID = uuid.Nil
	}
	return nil, fmt.Errorf("failed to allocate invoice number: %w", lastErr)
}

func isDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique")
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("payment")
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, filters repository.PaymentFilters) ([]models.Payment, int64, error) {
	if filters.OverdueOnly && filters.Today.IsZero() {
		filters.Today = models.Today()
	}
	return s.payments.List(ctx, filters)
}

func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, input UpdatePaymentInput) (*models.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, NewValidationError("amount", "amount must be positive")
		}
		payment.Amount = *input.Amount
	}
	if input.Currency != nil {
		payment.Currency = strings.ToUpper(*input.Currency)
	}
	if input.Status != nil {
		payment.Status = *input.Status
	}
	if input.PaymentMethod != nil {
		payment.PaymentMethod = *input.PaymentMethod
	}
	if input.DueDate != nil {
		payment.DueDate = *input.DueDate
	}
	if input.PaidDate != nil {
		payment.PaidDate = input.PaidDate
	}
	if input.Description != nil {
		payment.Description = *input.Description
	}
	if input.Notes != nil {
		payment.Notes = *input.Notes
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.payments.Delete(ctx, id)
}

// MarkPaid settles an invoice from the admin side.
func (s *PaymentService) MarkPaid(ctx context.Context, id uuid.UUID, paidDate *models.Date, method string) (*models.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	when := models.Today()
	if paidDate != nil {
		when = *paidDate
	}
	payment.Status = models.PaymentPaid
	payment.PaidDate = &when
	if method != "" {
		payment.PaymentMethod = method
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	s.logger.WithField("payment_id", payment.ID).Info("Payment marked paid")
	return payment, nil
}

func (s *PaymentService) MarkCancelled(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.Status = models.PaymentCancelled
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ConfirmPayment attests a client-reported payment. It only applies to
// already-paid invoices and appends a dated confirmation note; the status
// never changes here.
func (s *PaymentService) ConfirmPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPaid {
		return nil, NewStateError("only paid payments can be confirmed")
	}
	payment.Notes += fmt.Sprintf("\nConfirmed by admin on %s", models.Today())
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ClientMarkPaid lets a client report an invoice of their own as paid,
// naming the payout channel used. Payment update and admin notification
// commit together.
func (s *PaymentService) ClientMarkPaid(ctx context.Context, profile *models.ClientProfile, paymentID uuid.UUID, input ClientMarkPaidInput) (*models.Payment, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.ClientID != profile.ID {
		return nil, NewNotFoundError("payment")
	}
	if payment.Status == models.PaymentPaid {
		return nil, NewConflictError("payment", "payment is already marked as paid")
	}

	method, err := s.payments.GetMethod(ctx, input.PaymentMethodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("payment_method_id", "payment method not found")
		}
		return nil, fmt.Errorf("failed to load payment method: %w", err)
	}
	if !method.IsActive {
		return nil, NewValidationError("payment_method_id", "payment method is not active")
	}

	when := models.Today()
	if input.PaidDate != nil {
		when = *input.PaidDate
	}
	payment.Status = models.PaymentPaid
	payment.PaidDate = &when
	payment.PaymentMethodUsedID = &method.ID
	payment.ReferenceNumber = input.ReferenceNumber

	notification := &models.Notification{
		ClientID:         profile.ID,
		NotificationType: models.NotificationPayment,
		TargetAudience:   models.AudienceAdmin,
		Title:            "Payment Marked as Paid",
		Message: fmt.Sprintf("%s marked invoice %s (%s %s) as paid via %s. Reference: %s",
			profile.CompanyName, payment.InvoiceNumber, payment.Amount.StringFixed(2),
			payment.Currency, method.Name, input.ReferenceNumber),
		ChangedByID: &profile.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Client", "Plan", "PaymentMethodUsed").Save(payment).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("failed to create payment notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"client_id":  profile.ID,
		"invoice":    payment.InvoiceNumber,
	}).Info("Client reported payment")
	return payment, nil
}

func (s *PaymentService) CreateMethod(ctx context.Context, input PaymentMethodInput) (*models.AdminPaymentMethod, error) {
	if input.Name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	methodType := input.MethodType
	if methodType == "" {
		methodType = models.MethodOther
	}
	method := &models.AdminPaymentMethod{
		MethodType: methodType,
		Name:       input.Name,
		Details:    input.Details,
		IsActive:   true,
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		method.DisplayOrder = *input.DisplayOrder
	}
	if err := s.payments.CreateMethod(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *PaymentService) UpdateMethod(ctx context.Context, id uuid.UUID, input PaymentMethodInput) (*models.AdminPaymentMethod, error) {
	method, err := s.payments.GetMethod(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("payment method")
		}
		return nil, fmt.Errorf("failed to load payment method: %w", err)
	}
	if input.MethodType != "" {
		method.MethodType = input.MethodType
	}
	if input.Name != "" {
		method.Name = input.Name
	}
	if input.Details != "" {
		method.Details = input.Details
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		method.DisplayOrder = *input.DisplayOrder
	}
	if err := s.payments.UpdateMethod(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *PaymentService) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	if _, err := s.payments.GetMethod(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("payment method")
		}
		return fmt.Errorf("failed to load payment method: %w", err)
	}
	return s.payments.DeleteMethod(ctx, id)
}

func (s *PaymentService) ListMethods(ctx context.Context, activeOnly bool) ([]models.AdminPaymentMethod, error) {
	return s.payments.ListMethods(ctx, activeOnly)
}

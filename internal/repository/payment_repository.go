package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

// PaymentFilters narrows payment listings.
type PaymentFilters struct {
	ClientID    *uuid.UUID
	Status      models.PaymentStatus
	OverdueOnly bool
	Today       models.Date
	Limit       int
	Offset      int
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.User").
		Preload("Plan").
		Preload("PaymentMethodUsed").
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) List(ctx context.Context, filters PaymentFilters) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).
		Preload("Plan").
		Preload("PaymentMethodUsed")

	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.OverdueOnly {
		query = query.Where("status = ? AND due_date < ?", models.PaymentPending, filters.Today)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var payments []models.Payment
	if err := query.Order("due_date DESC").Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) sumAmount(query *gorm.DB) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := query.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

// TotalPaid sums the amount of every paid payment. Summation happens in Go
// with decimals so cents never drift through float math.
func (r *PaymentRepository) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	return r.sumAmount(r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentPaid))
}

// PaidBetween sums paid payments with paid_date in [from, to).
func (r *PaymentRepository) PaidBetween(ctx context.Context, from, to models.Date) (decimal.Decimal, error) {
	return r.sumAmount(r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ? AND paid_date >= ? AND paid_date < ?", models.PaymentPaid, from, to))
}

func (r *PaymentRepository) PendingTotal(ctx context.Context) (decimal.Decimal, error) {
	return r.sumAmount(r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentPending))
}

// OverdueAggregate returns the count and total amount of pending payments due
// strictly before today.
func (r *PaymentRepository) OverdueAggregate(ctx context.Context, today models.Date) (int64, decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ? AND due_date < ?", models.PaymentPending, today)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to count overdue payments: %w", err)
	}
	total, err := r.sumAmount(query)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return count, total, nil
}

// ListPaidSince returns paid payments with paid_date >= from, for the
// monthly revenue rollup.
func (r *PaymentRepository) ListPaidSince(ctx context.Context, from models.Date) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND paid_date >= ?", models.PaymentPaid, from).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list paid payments: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) Recent(ctx context.Context, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.User").
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent payments: %w", err)
	}
	return payments, nil
}

// DueSoon returns pending payments due within the next `days` days (today
// inclusive), soonest first.
func (r *PaymentRepository) DueSoon(ctx context.Context, today models.Date, days, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.User").
		Where("status = ? AND due_date >= ? AND due_date <= ?",
			models.PaymentPending, today, today.AddDays(days)).
		Order("due_date ASC").
		Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list upcoming payments: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) CreateMethod(ctx context.Context, method *models.AdminPaymentMethod) error {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetMethod(ctx context.Context, id uuid.UUID) (*models.AdminPaymentMethod, error) {
	var method models.AdminPaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentRepository) ListMethods(ctx context.Context, activeOnly bool) ([]models.AdminPaymentMethod, error) {
	query := r.db.WithContext(ctx).Model(&models.AdminPaymentMethod{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var methods []models.AdminPaymentMethod
	if err := query.Order("display_order ASC, name ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

func (r *PaymentRepository) UpdateMethod(ctx context.Context, method *models.AdminPaymentMethod) error {
	if err := r.db.WithContext(ctx).Save(method).Error; err != nil {
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	return nil
}

func (r *PaymentRepository) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.AdminPaymentMethod{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete payment method: %w", err)
	}
	return nil
}

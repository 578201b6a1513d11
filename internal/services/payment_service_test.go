package services

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

func datePtr(d models.Date) *models.Date { return &d }

func seedMethod(t *testing.T, db *gorm.DB, name string, active bool) *models.AdminPaymentMethod {
	t.Helper()
	method := &models.AdminPaymentMethod{
		MethodType: models.MethodBankTransfer,
		Name:       name,
		IsActive:   active,
	}
	require.NoError(t, db.Create(method).Error)
	return method
}

func TestCreatePaymentAllocatesInvoiceNumber(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	payment, err := svc.Create(testCtx(), CreatePaymentInput{
		ClientID: profile.ID,
		Amount:   decimal.RequireFromString("199.99"),
		Currency: "usd",
		DueDate:  datePtr(models.Today().AddDays(14)),
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{6}-[0-9A-F]{6}$`), payment.InvoiceNumber)
	assert.Equal(t, "USD", payment.Currency)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestCreatePaymentValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	_, err := svc.Create(testCtx(), CreatePaymentInput{
		ClientID: profile.ID,
		Amount:   decimal.Zero,
	})
	validation, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "amount")
	assert.Contains(t, validation.Fields, "due_date")
}

func TestPaymentIsOverdue(t *testing.T) {
	today := models.NewDate(2026, 9, 1)

	pastDue := models.Payment{Status: models.PaymentPending, DueDate: models.NewDate(2026, 8, 31)}
	assert.True(t, pastDue.IsOverdue(today))

	dueToday := models.Payment{Status: models.PaymentPending, DueDate: today}
	assert.False(t, dueToday.IsOverdue(today))

	paidLate := models.Payment{Status: models.PaymentPaid, DueDate: models.NewDate(2026, 8, 1)}
	assert.False(t, paidLate.IsOverdue(today))

	cancelled := models.Payment{Status: models.PaymentCancelled, DueDate: models.NewDate(2026, 8, 1)}
	assert.False(t, cancelled.IsOverdue(today))
}

func TestClientMarkPaidRejectsForeignPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	alpha := seedClient(t, db, "alpha@example.com", "Alpha")
	beta := seedClient(t, db, "beta@example.com", "Beta")
	payment := seedPayment(t, db, alpha.ID, "100.00", models.PaymentPending, models.Today(), nil)
	method := seedMethod(t, db, "Main Bank", true)

	_, err := svc.ClientMarkPaid(testCtx(), beta, payment.ID, ClientMarkPaidInput{PaymentMethodID: method.ID})
	_, ok := IsNotFoundError(err)
	assert.True(t, ok)
}

func TestClientMarkPaidRejectsAlreadyPaid(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	paid := models.Today()
	payment := seedPayment(t, db, profile.ID, "100.00", models.PaymentPaid, models.Today(), &paid)
	method := seedMethod(t, db, "Main Bank", true)

	_, err := svc.ClientMarkPaid(testCtx(), profile, payment.ID, ClientMarkPaidInput{PaymentMethodID: method.ID})
	_, ok := IsConflictError(err)
	assert.True(t, ok)
}

func TestClientMarkPaidRejectsInactiveMethod(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	payment := seedPayment(t, db, profile.ID, "100.00", models.PaymentPending, models.Today(), nil)
	method := seedMethod(t, db, "Old Bank", false)

	_, err := svc.ClientMarkPaid(testCtx(), profile, payment.ID, ClientMarkPaidInput{PaymentMethodID: method.ID})
	validation, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "payment_method_id")

	// The payment must be untouched.
	var reloaded models.Payment
	require.NoError(t, db.First(&reloaded, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentPending, reloaded.Status)
	assert.EqualValues(t, 0, countNotifications(t, db))
}

func TestClientMarkPaidSettlesAndNotifiesAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	payment := seedPayment(t, db, profile.ID, "250.00", models.PaymentPending, models.Today(), nil)
	method := seedMethod(t, db, "Main Bank", true)

	updated, err := svc.ClientMarkPaid(testCtx(), profile, payment.ID, ClientMarkPaidInput{
		PaymentMethodID: method.ID,
		ReferenceNumber: "TX-42",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.Status)
	require.NotNil(t, updated.PaidDate)
	require.NotNil(t, updated.PaymentMethodUsedID)
	assert.Equal(t, method.ID, *updated.PaymentMethodUsedID)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)
	assert.Equal(t, models.NotificationPayment, notification.NotificationType)
	assert.Equal(t, models.AudienceAdmin, notification.TargetAudience)
	assert.Equal(t, "Payment Marked as Paid", notification.Title)
	assert.Contains(t, notification.Message, payment.InvoiceNumber)
	assert.Contains(t, notification.Message, "250.00")
	assert.Contains(t, notification.Message, "Main Bank")
	assert.Contains(t, notification.Message, "TX-42")
}

func TestConfirmPaymentOnlyAppliesToPaid(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	pending := seedPayment(t, db, profile.ID, "100.00", models.PaymentPending, models.Today(), nil)
	paidDate := models.Today()
	paid := seedPayment(t, db, profile.ID, "100.00", models.PaymentPaid, models.Today(), &paidDate)

	_, err := svc.ConfirmPayment(testCtx(), pending.ID)
	_, ok := IsStateError(err)
	assert.True(t, ok)

	confirmed, err := svc.ConfirmPayment(testCtx(), paid.ID)
	require.NoError(t, err)
	assert.Contains(t, confirmed.Notes, "Confirmed by admin on "+models.Today().String())
}

func TestMarkPaidDefaultsPaidDate(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	payment := seedPayment(t, db, profile.ID, "100.00", models.PaymentPending, models.Today(), nil)

	updated, err := svc.MarkPaid(testCtx(), payment.ID, nil, "paypal")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.Status)
	require.NotNil(t, updated.PaidDate)
	assert.True(t, updated.PaidDate.Equal(models.Today()))
	assert.Equal(t, "paypal", updated.PaymentMethod)
}

func TestListMethodsFiltersActive(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentServiceForTest(db)
	seedMethod(t, db, "Active Bank", true)
	seedMethod(t, db, "Retired Bank", false)

	all, err := svc.ListMethods(testCtx(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListMethods(testCtx(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Active Bank", active[0].Name)
}

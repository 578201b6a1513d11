package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	today := models.Today()
	lastMonth := today.FirstOfMonth().AddDays(-1)

	paidThisMonth := today
	seedPayment(t, db, profile.ID, "300.00", models.PaymentPaid, today, &paidThisMonth)
	seedPayment(t, db, profile.ID, "200.00", models.PaymentPaid, lastMonth, &lastMonth)
	seedPayment(t, db, profile.ID, "150.00", models.PaymentPending, today.AddDays(3), nil)
	seedPayment(t, db, profile.ID, "80.00", models.PaymentPending, today.AddDays(-2), nil)
	seedPayment(t, db, profile.ID, "999.00", models.PaymentCancelled, today, nil)

	stats, err := svc.Stats(testCtx())
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.TotalClients)
	assert.EqualValues(t, 1, stats.ActiveClients)

	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("500.00")), "total revenue: %s", stats.TotalRevenue)
	assert.True(t, stats.RevenueThisMonth.Equal(decimal.RequireFromString("300.00")), "this month: %s", stats.RevenueThisMonth)
	assert.True(t, stats.RevenueLastMonth.Equal(decimal.RequireFromString("200.00")), "last month: %s", stats.RevenueLastMonth)
	assert.True(t, stats.PendingAmount.Equal(decimal.RequireFromString("230.00")), "pending: %s", stats.PendingAmount)
	assert.EqualValues(t, 1, stats.OverdueCount)
	assert.True(t, stats.OverdueAmount.Equal(decimal.RequireFromString("80.00")), "overdue: %s", stats.OverdueAmount)
}

func TestDashboardMonthlyRollup(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	today := models.Today()
	lastMonth := today.FirstOfMonth().AddDays(-1)

	seedPayment(t, db, profile.ID, "300.00", models.PaymentPaid, today, &today)
	seedPayment(t, db, profile.ID, "200.00", models.PaymentPaid, lastMonth, &lastMonth)

	stats, err := svc.Stats(testCtx())
	require.NoError(t, err)

	require.Len(t, stats.MonthlyRevenue, 6)
	// The window is oldest-first and ends with the current month.
	current := stats.MonthlyRevenue[5]
	assert.Equal(t, today.Format("2006-01"), current.Month)
	assert.True(t, current.Revenue.Equal(decimal.RequireFromString("300.00")), "current month: %s", current.Revenue)

	previous := stats.MonthlyRevenue[4]
	assert.Equal(t, lastMonth.Format("2006-01"), previous.Month)
	assert.True(t, previous.Revenue.Equal(decimal.RequireFromString("200.00")), "previous month: %s", previous.Revenue)

	// Empty months are zero-filled, not skipped.
	for _, bucket := range stats.MonthlyRevenue[:4] {
		assert.True(t, bucket.Revenue.IsZero(), "bucket %s: %s", bucket.Month, bucket.Revenue)
	}
}

func TestDashboardPaymentLists(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	today := models.Today()
	seedPayment(t, db, profile.ID, "50.00", models.PaymentPending, today.AddDays(3), nil)
	seedPayment(t, db, profile.ID, "60.00", models.PaymentPending, today.AddDays(10), nil)
	seedPayment(t, db, profile.ID, "70.00", models.PaymentPending, today.AddDays(-1), nil)

	stats, err := svc.Stats(testCtx())
	require.NoError(t, err)

	assert.Len(t, stats.RecentPayments, 3)

	// Upcoming covers pending invoices due within the next week, overdue
	// ones excluded.
	require.Len(t, stats.UpcomingPayments, 1)
	assert.True(t, stats.UpcomingPayments[0].Amount.Equal(decimal.RequireFromString("50.00")))

	var overdueSeen bool
	for _, view := range stats.RecentPayments {
		if view.IsOverdue {
			overdueSeen = true
			assert.True(t, view.Amount.Equal(decimal.RequireFromString("70.00")))
		}
	}
	assert.True(t, overdueSeen)
}

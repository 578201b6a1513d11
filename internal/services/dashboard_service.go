package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

const (
	rollupMonths       = 6
	recentPaymentLimit = 10
	dueSoonDays        = 7
	dueSoonLimit       = 5
)

// MonthRevenue is one bar of the trailing revenue chart.
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats is the admin landing-page aggregation. All month boundaries
// are first-of-calendar-month, so the 31st and the 1st never share a bucket.
type DashboardStats struct {
	TotalClients     int64 `json:"total_clients"`
	ActiveClients    int64 `json:"active_clients"`
	NewClientsMonth  int64 `json:"new_clients_this_month"`

	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	RevenueLastMonth decimal.Decimal `json:"revenue_last_month"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	OverdueCount     int64           `json:"overdue_count"`
	OverdueAmount    decimal.Decimal `json:"overdue_amount"`

	MonthlyRevenue   []MonthRevenue       `json:"monthly_revenue"`
	RecentPayments   []PaymentView        `json:"recent_payments"`
	UpcomingPayments []PaymentView        `json:"upcoming_payments"`

	TotalKeywords    int64 `json:"total_keywords"`
	TotalReports     int64 `json:"total_reports"`
	ReportsThisMonth int64 `json:"reports_this_month"`
}

type DashboardService struct {
	clients  *repository.ClientRepository
	payments *repository.PaymentRepository
	keywords *repository.KeywordRepository
	reports  *repository.ReportRepository
	logger   *logrus.Logger
}

func NewDashboardService(clients *repository.ClientRepository, payments *repository.PaymentRepository, keywords *repository.KeywordRepository, reports *repository.ReportRepository, logger *logrus.Logger) *DashboardService {
	return &DashboardService{
		clients:  clients,
		payments: payments,
		keywords: keywords,
		reports:  reports,
		logger:   logger,
	}
}

// Stats assembles the full dashboard in one call.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	today := models.Today()
	monthStart := today.FirstOfMonth()
	lastMonthStart := models.DateOf(monthStart.AddDate(0, -1, 0))
	monthStartTime := monthStart.Time

	stats := &DashboardStats{
		TotalRevenue:     decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		RevenueLastMonth: decimal.Zero,
		PendingAmount:    decimal.Zero,
		OverdueAmount:    decimal.Zero,
	}
	var err error

	if stats.TotalClients, err = s.clients.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveClients, err = s.clients.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.NewClientsMonth, err = s.clients.CountCreatedSince(ctx, monthStartTime); err != nil {
		return nil, err
	}

	if stats.TotalRevenue, err = s.payments.TotalPaid(ctx); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonth, err = s.payments.PaidBetween(ctx, monthStart, today.AddDays(1)); err != nil {
		return nil, err
	}
	if stats.RevenueLastMonth, err = s.payments.PaidBetween(ctx, lastMonthStart, monthStart); err != nil {
		return nil, err
	}
	if stats.PendingAmount, err = s.payments.PendingTotal(ctx); err != nil {
		return nil, err
	}
	if stats.OverdueCount, stats.OverdueAmount, err = s.payments.OverdueAggregate(ctx, today); err != nil {
		return nil, err
	}

	if stats.MonthlyRevenue, err = s.monthlyRollup(ctx, monthStart); err != nil {
		return nil, err
	}

	recent, err := s.payments.Recent(ctx, recentPaymentLimit)
	if err != nil {
		return nil, err
	}
	stats.RecentPayments = paymentViews(recent, today)

	upcoming, err := s.payments.DueSoon(ctx, today, dueSoonDays, dueSoonLimit)
	if err != nil {
		return nil, err
	}
	stats.UpcomingPayments = paymentViews(upcoming, today)

	if stats.TotalKeywords, err = s.keywords.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.TotalReports, err = s.reports.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.ReportsThisMonth, err = s.reports.CountCreatedSince(ctx, monthStartTime); err != nil {
		return nil, err
	}

	return stats, nil
}

// monthlyRollup buckets paid amounts by calendar month for the trailing
// window, zero-filling empty months. Bucketing happens in Go so it behaves
// identically on every SQL dialect.
func (s *DashboardService) monthlyRollup(ctx context.Context, currentMonthStart models.Date) ([]MonthRevenue, error) {
	windowStart := models.DateOf(currentMonthStart.AddDate(0, -(rollupMonths - 1), 0))

	payments, err := s.payments.ListPaidSince(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	byMonth := map[string]decimal.Decimal{}
	for _, p := range payments {
		if p.PaidDate == nil {
			continue
		}
		key := p.PaidDate.Format("2006-01")
		byMonth[key] = byMonth[key].Add(p.Amount)
	}

	rollup := make([]MonthRevenue, 0, rollupMonths)
	for i := 0; i < rollupMonths; i++ {
		month := windowStart.AddDate(0, i, 0)
		key := month.Format("2006-01")
		revenue := byMonth[key]
		if revenue.IsZero() {
			revenue = decimal.Zero
		}
		rollup = append(rollup, MonthRevenue{Month: key, Revenue: revenue})
	}
	return rollup, nil
}

func paymentViews(payments []models.Payment, today models.Date) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		views = append(views, PaymentView{
			Payment:   p,
			PlanName:  planName,
			IsOverdue: p.IsOverdue(today),
		})
	}
	return views
}

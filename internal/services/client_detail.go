package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

// RankingPoint is one chart-ready observation.
type RankingPoint struct {
	Date     models.Date `json:"date"`
	Position int         `json:"position"`
}

// KeywordView is a keyword enriched with its ranking trend. LatestPosition is
// nil when no ranking exists; PositionChange needs at least two observations
// and is second-latest minus latest, so positive means the keyword climbed.
type KeywordView struct {
	ID             uuid.UUID      `json:"id"`
	Keyword        string         `json:"keyword"`
	TargetURL      string         `json:"target_url"`
	SearchVolume   int            `json:"search_volume"`
	Difficulty     int            `json:"difficulty"`
	IsPrimary      bool           `json:"is_primary"`
	LatestPosition *int           `json:"latest_position"`
	PositionChange *int           `json:"position_change"`
	RankingHistory []RankingPoint `json:"ranking_history"`
}

// KeywordSummary buckets a client's keywords by their latest position.
type KeywordSummary struct {
	Total      int64 `json:"total"`
	Primary    int64 `json:"primary"`
	InTop10    int64 `json:"in_top_10"`
	InTop50    int64 `json:"in_top_50"`
	NotRanking int64 `json:"not_ranking"`
}

// PaymentSummary aggregates a client's ledger.
type PaymentSummary struct {
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	OverdueCount  int             `json:"overdue_count"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}

// PaymentView is a ledger row with the derived overdue flag attached.
type PaymentView struct {
	models.Payment
	PlanName  *string `json:"plan_name"`
	IsOverdue bool    `json:"is_overdue"`
}

// ClientDetail is the admin drill-down: the profile plus keyword and payment
// projections and their summaries.
type ClientDetail struct {
	*models.ClientProfile
	SubscriptionStatus string         `json:"subscription_status"`
	Keywords           []KeywordView  `json:"keywords"`
	Payments           []PaymentView  `json:"payments"`
	KeywordSummary     KeywordSummary `json:"keyword_summary"`
	PaymentSummary     PaymentSummary `json:"payment_summary"`
}

const detailPaymentLimit = 20

// Detail assembles the drill-down view for one client.
func (s *ClientService) Detail(ctx context.Context, id uuid.UUID) (*ClientDetail, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	today := models.Today()

	keywords, err := s.keywords.List(ctx, repository.KeywordFilters{ClientID: &profile.ID})
	if err != nil {
		return nil, err
	}

	views := make([]KeywordView, 0, len(keywords))
	summary := KeywordSummary{Total: int64(len(keywords))}
	for _, kw := range keywords {
		view, err := s.keywordView(ctx, &kw)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
		if kw.IsPrimary {
			summary.Primary++
		}
		switch {
		case view.LatestPosition == nil:
			summary.NotRanking++
		case *view.LatestPosition <= 10:
			summary.InTop10++
		case *view.LatestPosition <= 50:
			summary.InTop50++
		}
	}

	payments, _, err := s.payments.List(ctx, repository.PaymentFilters{
		ClientID: &profile.ID,
		Limit:    detailPaymentLimit,
	})
	if err != nil {
		return nil, err
	}

	paymentViews := make([]PaymentView, 0, len(payments))
	paySummary := PaymentSummary{
		TotalPaid:     decimal.Zero,
		TotalPending:  decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		paymentViews = append(paymentViews, PaymentView{
			Payment:   p,
			PlanName:  planName,
			IsOverdue: p.IsOverdue(today),
		})
	}

	allPayments, _, err := s.payments.List(ctx, repository.PaymentFilters{ClientID: &profile.ID})
	if err != nil {
		return nil, err
	}
	for _, p := range allPayments {
		switch p.Status {
		case models.PaymentPaid:
			paySummary.TotalPaid = paySummary.TotalPaid.Add(p.Amount)
		case models.PaymentPending:
			paySummary.TotalPending = paySummary.TotalPending.Add(p.Amount)
		}
		if p.IsOverdue(today) {
			paySummary.OverdueCount++
			paySummary.OverdueAmount = paySummary.OverdueAmount.Add(p.Amount)
		}
	}

	return &ClientDetail{
		ClientProfile:      profile,
		SubscriptionStatus: profile.SubscriptionStatus(today),
		Keywords:           views,
		Payments:           paymentViews,
		KeywordSummary:     summary,
		PaymentSummary:     paySummary,
	}, nil
}

// KeywordViews returns the trend-enriched keyword list for one client, as
// served on the client portal.
func (s *ClientService) KeywordViews(ctx context.Context, clientID uuid.UUID) ([]KeywordView, error) {
	keywords, err := s.keywords.List(ctx, repository.KeywordFilters{ClientID: &clientID})
	if err != nil {
		return nil, err
	}
	views := make([]KeywordView, 0, len(keywords))
	for _, kw := range keywords {
		view, err := s.keywordView(ctx, &kw)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// keywordView loads the latest ten rankings and derives trend fields.
func (s *ClientService) keywordView(ctx context.Context, kw *models.Keyword) (*KeywordView, error) {
	rankings, err := s.keywords.LatestRankings(ctx, kw.ID, rankingHistoryLimit)
	if err != nil {
		return nil, err
	}

	view := &KeywordView{
		ID:             kw.ID,
		Keyword:        kw.Keyword,
		TargetURL:      kw.TargetURL,
		SearchVolume:   kw.SearchVolume,
		Difficulty:     kw.Difficulty,
		IsPrimary:      kw.IsPrimary,
		RankingHistory: make([]RankingPoint, 0, len(rankings)),
	}
	if len(rankings) > 0 {
		pos := rankings[0].Position
		view.LatestPosition = &pos
	}
	if len(rankings) >= 2 {
		change := rankings[1].Position - rankings[0].Position
		view.PositionChange = &change
	}
	for i := len(rankings) - 1; i >= 0; i-- {
		view.RankingHistory = append(view.RankingHistory, RankingPoint{
			Date:     rankings[i].RecordedDate,
			Position: rankings[i].Position,
		})
	}
	return view, nil
}

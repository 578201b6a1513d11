package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

func intPtr(n int) *int { return &n }

func TestCreateKeywordRejectsDuplicatePerClient(t *testing.T) {
	db := newTestDB(t)
	svc := newKeywordServiceForTest(db)
	alpha := seedClient(t, db, "alpha@example.com", "Alpha")
	beta := seedClient(t, db, "beta@example.com", "Beta")

	_, err := svc.Create(testCtx(), CreateKeywordInput{ClientID: alpha.ID, Keyword: "seo agency"})
	require.NoError(t, err)

	_, err = svc.Create(testCtx(), CreateKeywordInput{ClientID: alpha.ID, Keyword: "seo agency"})
	_, ok := IsConflictError(err)
	assert.True(t, ok)

	// The same text is fine for another client.
	_, err = svc.Create(testCtx(), CreateKeywordInput{ClientID: beta.ID, Keyword: "seo agency"})
	assert.NoError(t, err)
}

func TestCreateKeywordValidatesDifficulty(t *testing.T) {
	db := newTestDB(t)
	svc := newKeywordServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	_, err := svc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "x", Difficulty: 101})
	_, ok := IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "x", Difficulty: 100})
	assert.NoError(t, err)
}

func TestAddRankingOverwritesSameObservation(t *testing.T) {
	db := newTestDB(t)
	svc := newKeywordServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	keyword, err := svc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "seo agency"})
	require.NoError(t, err)

	day := models.NewDate(2026, 8, 30)
	_, err = svc.AddRanking(testCtx(), RankingInput{KeywordID: keyword.ID, Position: intPtr(12), RecordedDate: &day})
	require.NoError(t, err)
	_, err = svc.AddRanking(testCtx(), RankingInput{KeywordID: keyword.ID, Position: intPtr(9), RecordedDate: &day})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.KeywordRanking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rankings, err := svc.LatestRankings(testCtx(), keyword.ID)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, 9, rankings[0].Position)
	assert.Equal(t, models.SearchEngineGoogle, rankings[0].SearchEngine)
}

func TestBulkUpsertReportsPartialFailures(t *testing.T) {
	db := newTestDB(t)
	svc := newKeywordServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	keyword, err := svc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "seo agency"})
	require.NoError(t, err)

	day := models.NewDate(2026, 8, 30)
	result, err := svc.BulkUpsertRankings(testCtx(), []RankingInput{
		{KeywordID: keyword.ID, Position: intPtr(5), RecordedDate: &day},
		{KeywordID: keyword.ID, RecordedDate: &day}, // missing position
		{KeywordID: keyword.ID, Position: intPtr(7), RecordedDate: &day, SearchEngine: models.SearchEngineBing},
	})
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Message, "position")
}

func TestKeywordViewDerivesTrend(t *testing.T) {
	db := newTestDB(t)
	keywordSvc := newKeywordServiceForTest(db)
	clientSvc := newClientServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	keyword, err := keywordSvc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "seo agency"})
	require.NoError(t, err)

	days := []struct {
		date     models.Date
		position int
	}{
		{models.NewDate(2026, 8, 28), 30},
		{models.NewDate(2026, 8, 29), 20},
		{models.NewDate(2026, 8, 30), 8},
	}
	for _, d := range days {
		day := d.date
		_, err := keywordSvc.AddRanking(testCtx(), RankingInput{KeywordID: keyword.ID, Position: intPtr(d.position), RecordedDate: &day})
		require.NoError(t, err)
	}

	views, err := clientSvc.KeywordViews(testCtx(), profile.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	view := views[0]

	require.NotNil(t, view.LatestPosition)
	assert.Equal(t, 8, *view.LatestPosition)
	// Second-latest minus latest: 20 - 8, positive means the keyword climbed.
	require.NotNil(t, view.PositionChange)
	assert.Equal(t, 12, *view.PositionChange)

	// History reads oldest first for charting.
	require.Len(t, view.RankingHistory, 3)
	assert.Equal(t, 30, view.RankingHistory[0].Position)
	assert.Equal(t, 8, view.RankingHistory[2].Position)
}

func TestKeywordViewWithoutRankings(t *testing.T) {
	db := newTestDB(t)
	keywordSvc := newKeywordServiceForTest(db)
	clientSvc := newClientServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	_, err := keywordSvc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "seo agency"})
	require.NoError(t, err)

	views, err := clientSvc.KeywordViews(testCtx(), profile.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].LatestPosition)
	assert.Nil(t, views[0].PositionChange)
	assert.Empty(t, views[0].RankingHistory)
}

func TestUpdateKeywordKeepsTextImmutable(t *testing.T) {
	db := newTestDB(t)
	svc := newKeywordServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	keyword, err := svc.Create(testCtx(), CreateKeywordInput{ClientID: profile.ID, Keyword: "seo agency", Difficulty: 40})
	require.NoError(t, err)

	updated, err := svc.Update(testCtx(), keyword.ID, UpdateKeywordInput{
		Difficulty: intPtr(55),
		IsPrimary:  func() *bool { b := true; return &b }(),
	})
	require.NoError(t, err)
	assert.Equal(t, "seo agency", updated.Keyword)
	assert.Equal(t, 55, updated.Difficulty)
	assert.True(t, updated.IsPrimary)
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

const rankingHistoryLimit = 10

// CreateKeywordInput is the admin payload for tracking a new keyword.
type CreateKeywordInput struct {
	ClientID     uuid.UUID `json:"client_id"`
	Keyword      string    `json:"keyword"`
	TargetURL    string    `json:"target_url"`
	SearchVolume int       `json:"search_volume"`
	Difficulty   int       `json:"difficulty"`
	IsPrimary    bool      `json:"is_primary"`
}

// UpdateKeywordInput is the patch payload. The keyword text and owning
// client never change after creation.
type UpdateKeywordInput struct {
	TargetURL    *string `json:"target_url"`
	SearchVolume *int    `json:"search_volume"`
	Difficulty   *int    `json:"difficulty"`
	IsPrimary    *bool   `json:"is_primary"`
}

// RankingInput is one observation to record against a keyword.
type RankingInput struct {
	KeywordID    uuid.UUID           `json:"keyword_id"`
	Position     *int                `json:"position"`
	RecordedDate *models.Date        `json:"recorded_date"`
	SearchEngine models.SearchEngine `json:"search_engine"`
}

// BulkRankingError reports one rejected entry of a bulk ingest, by its index
// in the submitted batch.
type BulkRankingError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkRankingResult is the partial-failure outcome of a bulk ingest.
type BulkRankingResult struct {
	Created []models.KeywordRanking `json:"created"`
	Errors  []BulkRankingError      `json:"errors"`
}

type KeywordService struct {
	keywords *repository.KeywordRepository
	clients  *repository.ClientRepository
	logger   *logrus.Logger
}

func NewKeywordService(keywords *repository.KeywordRepository, clients *repository.ClientRepository, logger *logrus.Logger) *KeywordService {
	return &KeywordService{
		keywords: keywords,
		clients:  clients,
		logger:   logger,
	}
}

func (s *KeywordService) Create(ctx context.Context, input CreateKeywordInput) (*models.Keyword, error) {
	if input.Keyword == "" {
		return nil, NewValidationError("keyword", "keyword is required")
	}
	if input.Difficulty < 0 || input.Difficulty > 100 {
		return nil, NewValidationError("difficulty", "difficulty must be between 0 and 100")
	}
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	exists, err := s.keywords.ExistsForClient(ctx, input.ClientID, input.Keyword)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("keyword", "this keyword is already tracked for the client")
	}

	keyword := &models.Keyword{
		ClientID:     input.ClientID,
		Keyword:      input.Keyword,
		TargetURL:    input.TargetURL,
		SearchVolume: input.SearchVolume,
		Difficulty:   input.Difficulty,
		IsPrimary:    input.IsPrimary,
	}
	if err := s.keywords.Create(ctx, keyword); err != nil {
		return nil, err
	}
	return keyword, nil
}

func (s *KeywordService) Get(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	keyword, err := s.keywords.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("keyword")
		}
		return nil, fmt.Errorf("failed to load keyword: %w", err)
	}
	return keyword, nil
}

func (s *KeywordService) List(ctx context.Context, filters repository.KeywordFilters) ([]models.Keyword, error) {
	return s.keywords.List(ctx, filters)
}

func (s *KeywordService) Update(ctx context.Context, id uuid.UUID, input UpdateKeywordInput) (*models.Keyword, error) {
	keyword, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.TargetURL != nil {
		keyword.TargetURL = *input.TargetURL
	}
	if input.SearchVolume != nil {
		keyword.SearchVolume = *input.SearchVolume
	}
	if input.Difficulty != nil {
		if *input.Difficulty < 0 || *input.Difficulty > 100 {
			return nil, NewValidationError("difficulty", "difficulty must be between 0 and 100")
		}
		keyword.Difficulty = *input.Difficulty
	}
	if input.IsPrimary != nil {
		keyword.IsPrimary = *input.IsPrimary
	}
	if err := s.keywords.Update(ctx, keyword); err != nil {
		return nil, err
	}
	return keyword, nil
}

func (s *KeywordService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.keywords.Delete(ctx, id)
}

// AddRanking records a single observation, overwriting the position when one
// already exists for the same day and engine.
func (s *KeywordService) AddRanking(ctx context.Context, input RankingInput) (*models.KeywordRanking, error) {
	ranking, err := s.buildRanking(ctx, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.keywords.UpsertRanking(ctx, ranking); err != nil {
		return nil, err
	}
	return ranking, nil
}

func (s *KeywordService) buildRanking(ctx context.Context, input RankingInput) (*models.KeywordRanking, error) {
	if input.Position == nil {
		return nil, NewValidationError("position", "position is required")
	}
	if *input.Position < 0 {
		return nil, NewValidationError("position", "position cannot be negative")
	}
	if input.RecordedDate == nil {
		return nil, NewValidationError("recorded_date", "recorded date is required")
	}
	engine := input.SearchEngine
	if engine == "" {
		engine = models.SearchEngineGoogle
	}
	if _, err := s.keywords.GetByID(ctx, input.KeywordID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("keyword")
		}
		return nil, fmt.Errorf("failed to load keyword: %w", err)
	}
	return &models.KeywordRanking{
		KeywordID:    input.KeywordID,
		Position:     *input.Position,
		RecordedDate: *input.RecordedDate,
		SearchEngine: engine,
	}, nil
}

// BulkUpsertRankings ingests a batch of observations. A bad entry never
// aborts the batch; it is reported beside the successes.
func (s *KeywordService) BulkUpsertRankings(ctx context.Context, entries []RankingInput) (*BulkRankingResult, error) {
	result := &BulkRankingResult{
		Created: []models.KeywordRanking{},
		Errors:  []BulkRankingError{},
	}
	for i, entry := range entries {
		ranking, err := s.buildRanking(ctx, entry)
		if err != nil {
			result.Errors = append(result.Errors, BulkRankingError{Index: i, Message: err.Error()})
			continue
		}
		if _, err := s.keywords.UpsertRanking(ctx, ranking); err != nil {
			result.Errors = append(result.Errors, BulkRankingError{Index: i, Message: err.Error()})
			continue
		}
		result.Created = append(result.Created, *ranking)
	}
	s.logger.WithFields(logrus.Fields{
		"created": len(result.Created),
		"errors":  len(result.Errors),
	}).Info("Bulk ranking ingest finished")
	return result, nil
}

// LatestRankings exposes the newest-first observation window for a keyword.
func (s *KeywordService) LatestRankings(ctx context.Context, keywordID uuid.UUID) ([]models.KeywordRanking, error) {
	return s.keywords.LatestRankings(ctx, keywordID, rankingHistoryLimit)
}

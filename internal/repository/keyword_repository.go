package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

// KeywordFilters narrows keyword listings.
type KeywordFilters struct {
	ClientID  *uuid.UUID
	IsPrimary *bool
}

type KeywordRepository struct {
	db *gorm.DB
}

func NewKeywordRepository(db *gorm.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

func (r *KeywordRepository) Create(ctx context.Context, keyword *models.Keyword) error {
	if err := r.db.WithContext(ctx).Create(keyword).Error; err != nil {
		return fmt.Errorf("failed to create keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	var keyword models.Keyword
	if err := r.db.WithContext(ctx).First(&keyword, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &keyword, nil
}

func (r *KeywordRepository) List(ctx context.Context, filters KeywordFilters) ([]models.Keyword, error) {
	query := r.db.WithContext(ctx).Model(&models.Keyword{})
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.IsPrimary != nil {
		query = query.Where("is_primary = ?", *filters.IsPrimary)
	}
	var keywords []models.Keyword
	if err := query.Order("keyword ASC").Find(&keywords).Error; err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}

func (r *KeywordRepository) ExistsForClient(ctx context.Context, clientID uuid.UUID, text string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Keyword{}).
		Where("client_id = ? AND keyword = ?", clientID, text).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check keyword: %w", err)
	}
	return count > 0, nil
}

func (r *KeywordRepository) Update(ctx context.Context, keyword *models.Keyword) error {
	if err := r.db.WithContext(ctx).Save(keyword).Error; err != nil {
		return fmt.Errorf("failed to update keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Keyword{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Keyword{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count keywords: %w", err)
	}
	return count, nil
}

func (r *KeywordRepository) CreateRanking(ctx context.Context, ranking *models.KeywordRanking) error {
	if err := r.db.WithContext(ctx).Create(ranking).Error; err != nil {
		return fmt.Errorf("failed to create ranking: %w", err)
	}
	return nil
}

// UpsertRanking writes one observation, overwriting the position when a row
// already exists for the same (keyword, date, engine) key. The returned flag
// reports whether a new row was inserted.
func (r *KeywordRepository) UpsertRanking(ctx context.Context, ranking *models.KeywordRanking) (bool, error) {
	var existing models.KeywordRanking
	err := r.db.WithContext(ctx).
		Where("keyword_id = ? AND recorded_date = ? AND search_engine = ?",
			ranking.KeywordID, ranking.RecordedDate, ranking.SearchEngine).
		First(&existing).Error
	if err == nil {
		if updateErr := r.db.WithContext(ctx).Model(&existing).
			Update("position", ranking.Position).Error; updateErr != nil {
			return false, fmt.Errorf("failed to update ranking: %w", updateErr)
		}
		*ranking = existing
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, fmt.Errorf("failed to look up ranking: %w", err)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "keyword_id"}, {Name: "recorded_date"}, {Name: "search_engine"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"position"}),
	}).Create(ranking).Error; err != nil {
		return false, fmt.Errorf("failed to upsert ranking: %w", err)
	}
	return true, nil
}

// LatestRankings returns up to limit observations, newest first. Ties on
// recorded_date break by created_at then id so the order is deterministic.
func (r *KeywordRepository) LatestRankings(ctx context.Context, keywordID uuid.UUID, limit int) ([]models.KeywordRanking, error) {
	var rankings []models.KeywordRanking
	if err := r.db.WithContext(ctx).
		Where("keyword_id = ?", keywordID).
		Order("recorded_date DESC, created_at DESC, id DESC").
		Limit(limit).
		Find(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	return rankings, nil
}

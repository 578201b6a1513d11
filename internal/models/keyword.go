package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SearchEngine string

const (
	SearchEngineGoogle SearchEngine = "google"
	SearchEngineBing   SearchEngine = "bing"
	SearchEngineYahoo  SearchEngine = "yahoo"
)

// Keyword is a tracked search term for one client. The text is unique within
// the client but may repeat across clients.
type Keyword struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID     uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_keywords_client_text" json:"client_id"`
	Client       ClientProfile `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Keyword      string        `gorm:"size:255;not null;uniqueIndex:idx_keywords_client_text" json:"keyword"`
	TargetURL    string        `gorm:"size:255" json:"target_url"`
	SearchVolume int           `gorm:"not null;default:0" json:"search_volume"`
	Difficulty   int           `gorm:"not null;default:0" json:"difficulty"`
	IsPrimary    bool          `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (k *Keyword) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// KeywordRanking is one position observation. Position 0 means the keyword
// did not rank in the tracked result window that day. At most one row exists
// per (keyword, recorded_date, search_engine); re-ingestion overwrites.
type KeywordRanking struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	KeywordID    uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_rankings_observation" json:"keyword_id"`
	Keyword      *Keyword     `gorm:"foreignKey:KeywordID;constraint:OnDelete:CASCADE" json:"-"`
	Position     int          `gorm:"not null" json:"position"`
	RecordedDate Date         `gorm:"type:date;not null;uniqueIndex:idx_rankings_observation" json:"recorded_date"`
	SearchEngine SearchEngine `gorm:"size:20;not null;default:'google';uniqueIndex:idx_rankings_observation" json:"search_engine"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (r *KeywordRanking) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

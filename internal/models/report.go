package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportType string

const (
	ReportMonthlySEO      ReportType = "monthly_seo"
	ReportKeywordRanking  ReportType = "keyword_ranking"
	ReportTrafficAnalysis ReportType = "traffic_analysis"
	ReportTechnicalAudit  ReportType = "technical_audit"
	ReportCustom          ReportType = "custom"
)

// Report is a deliverable document. The file itself lives in object storage;
// this row only carries metadata and the storage path.
type Report struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      ClientProfile `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	ReportType  ReportType    `gorm:"size:20;not null;default:'custom'" json:"report_type"`
	Description string        `gorm:"type:text" json:"description"`

	FilePath string `gorm:"size:500" json:"file_path"`
	FileName string `gorm:"size:255" json:"file_name"`
	FileSize int64  `gorm:"not null;default:0" json:"file_size"`

	ReportDate   Date       `gorm:"type:date;not null" json:"report_date"`
	UploadedByID *uuid.UUID `gorm:"type:uuid" json:"uploaded_by_id"`
	UploadedBy   *User      `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"uploaded_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/storage"
)

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = 1 * time.Hour
)

// CreateReportInput registers the metadata of an uploaded report file.
type CreateReportInput struct {
	ClientID    uuid.UUID         `json:"client_id"`
	Title       string            `json:"title"`
	ReportType  models.ReportType `json:"report_type"`
	Description string            `json:"description"`
	FilePath    string            `json:"file_path"`
	FileName    string            `json:"file_name"`
	FileSize    int64             `json:"file_size"`
	ReportDate  *models.Date      `json:"report_date"`
}

// UpdateReportInput is the metadata patch payload; the stored file itself is
// immutable.
type UpdateReportInput struct {
	Title       *string            `json:"title"`
	ReportType  *models.ReportType `json:"report_type"`
	Description *string            `json:"description"`
	ReportDate  *models.Date       `json:"report_date"`
}

// ReportView attaches a fresh download URL to a report row.
type ReportView struct {
	models.Report
	DownloadURL string `json:"download_url,omitempty"`
}

type ReportService struct {
	reports *repository.ReportRepository
	clients *repository.ClientRepository
	store   storage.ObjectStore
	logger  *logrus.Logger
}

// NewReportService accepts a nil store; file endpoints then fail with
// UnavailableError while metadata stays readable.
func NewReportService(reports *repository.ReportRepository, clients *repository.ClientRepository, store storage.ObjectStore, logger *logrus.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		clients: clients,
		store:   store,
		logger:  logger,
	}
}

func (s *ReportService) Create(ctx context.Context, actor *models.User, input CreateReportInput) (*models.Report, error) {
	fields := map[string]string{}
	if input.Title == "" {
		fields["title"] = "title is required"
	}
	if input.ReportDate == nil {
		fields["report_date"] = "report date is required"
	}
	if len(fields) > 0 {
		return nil, NewValidationErrors(fields)
	}
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	reportType := input.ReportType
	if reportType == "" {
		reportType = models.ReportCustom
	}
	actorID := actor.ID
	report := &models.Report{
		ClientID:     input.ClientID,
		Title:        input.Title,
		ReportType:   reportType,
		Description:  input.Description,
		FilePath:     input.FilePath,
		FileName:     input.FileName,
		FileSize:     input.FileSize,
		ReportDate:   *input.ReportDate,
		UploadedByID: &actorID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("report")
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return report, nil
}

// GetForClient fetches a report only when it belongs to the given client.
func (s *ReportService) GetForClient(ctx context.Context, clientID, id uuid.UUID) (*models.Report, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.ClientID != clientID {
		return nil, NewNotFoundError("report")
	}
	return report, nil
}

func (s *ReportService) List(ctx context.Context, filters repository.ReportFilters) ([]models.Report, error) {
	return s.reports.List(ctx, filters)
}

func (s *ReportService) Update(ctx context.Context, id uuid.UUID, input UpdateReportInput) (*models.Report, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		report.Title = *input.Title
	}
	if input.ReportType != nil {
		report.ReportType = *input.ReportType
	}
	if input.Description != nil {
		report.Description = *input.Description
	}
	if input.ReportDate != nil {
		report.ReportDate = *input.ReportDate
	}
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Delete removes the metadata row and then the stored object. A storage
// failure after commit is logged, not surfaced; the row is already gone.
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	report, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}
	if s.store != nil && report.FilePath != "" {
		if err := s.store.Delete(ctx, report.FilePath); err != nil {
			s.logger.WithError(err).WithField("path", report.FilePath).
				Warn("Failed to delete stored report file")
		}
	}
	return nil
}

// UploadURL allocates an object path under the client's prefix and signs a
// direct upload to it.
func (s *ReportService) UploadURL(ctx context.Context, clientID uuid.UUID, fileName string) (*storage.SignedUpload, error) {
	if s.store == nil {
		return nil, NewUnavailableError("object storage")
	}
	if fileName == "" {
		return nil, NewValidationError("file_name", "file name is required")
	}
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	objectPath := reportObjectPath(clientID, fileName, time.Now())
	signed, err := s.store.SignUpload(ctx, objectPath, uploadURLExpiry)
	if err != nil {
		return nil, NewUnavailableError("object storage")
	}
	return signed, nil
}

// DownloadURL signs a short-lived download for the report's stored file.
func (s *ReportService) DownloadURL(ctx context.Context, report *models.Report) (string, error) {
	if s.store == nil {
		return "", NewUnavailableError("object storage")
	}
	if report.FilePath == "" {
		return "", NewNotFoundError("report file")
	}
	downloadURL, err := s.store.SignDownload(ctx, report.FilePath, downloadURLExpiry)
	if err != nil {
		return "", NewUnavailableError("object storage")
	}
	return downloadURL, nil
}

// reportObjectPath keeps each client's files under their own prefix with a
// date-stamped, collision-proof name.
func reportObjectPath(clientID uuid.UUID, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	u := uuid.New()
	name := fmt.Sprintf("%s_%s%s", now.Format("20060102"), hex.EncodeToString(u[:4]), ext)
	return fmt.Sprintf("reports/client_%s/%s", clientID, name)
}

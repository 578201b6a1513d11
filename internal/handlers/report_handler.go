package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/middleware"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// ReportHandler serves report metadata plus signed upload/download URLs.
type ReportHandler struct {
	reports *services.ReportService
	clients *services.ClientService
}

func NewReportHandler(reports *services.ReportService, clients *services.ClientService) *ReportHandler {
	return &ReportHandler{reports: reports, clients: clients}
}

func (h *ReportHandler) List(c *gin.Context) {
	filters := repository.ReportFilters{
		ClientID:   uuidQuery(c, "client_id"),
		ReportType: models.ReportType(c.Query("report_type")),
	}
	reports, err := h.reports.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", reports)
}

func (h *ReportHandler) Create(c *gin.Context) {
	var input services.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	report, err := h.reports.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Report created", report)
}

func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid report id", nil)
		return
	}
	report, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", report)
}

func (h *ReportHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid report id", nil)
		return
	}
	var input services.UpdateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	report, err := h.reports.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Report updated", report)
}

func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid report id", nil)
		return
	}
	if err := h.reports.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Report deleted", nil)
}

type uploadURLRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	FileName string    `json:"file_name" binding:"required"`
}

// UploadURL signs a direct upload into the client's storage prefix.
func (h *ReportHandler) UploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "client_id and file_name are required", err)
		return
	}
	signed, err := h.reports.UploadURL(c.Request.Context(), req.ClientID, req.FileName)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", signed)
}

// DownloadURL signs a short-lived download for the report's file.
func (h *ReportHandler) DownloadURL(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid report id", nil)
		return
	}
	report, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	downloadURL, err := h.reports.DownloadURL(c.Request.Context(), report)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"download_url": downloadURL})
}

// ClientList returns the caller's own reports.
func (h *ReportHandler) ClientList(c *gin.Context) {
	profile, err := h.clients.GetByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	filters := repository.ReportFilters{
		ClientID:   &profile.ID,
		ReportType: models.ReportType(c.Query("report_type")),
	}
	reports, err := h.reports.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", reports)
}

// ClientGet returns one of the caller's reports with a download URL when
// storage is reachable.
func (h *ReportHandler) ClientGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid report id", nil)
		return
	}
	profile, err := h.clients.GetByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	report, err := h.reports.GetForClient(c.Request.Context(), profile.ID, id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	view := services.ReportView{Report: *report}
	if downloadURL, err := h.reports.DownloadURL(c.Request.Context(), report); err == nil {
		view.DownloadURL = downloadURL
	}
	SuccessResponse(c, http.StatusOK, "", view)
}

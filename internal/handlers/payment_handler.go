package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// PaymentHandler serves the admin payment ledger and the client payment
// portal.
type PaymentHandler struct {
	payments *services.PaymentService
	clients  *services.ClientService
}

func NewPaymentHandler(payments *services.PaymentService, clients *services.ClientService) *PaymentHandler {
	return &PaymentHandler{payments: payments, clients: clients}
}

func paymentView(p *models.Payment, today models.Date) gin.H {
	var planName *string
	if p.Plan != nil {
		planName = &p.Plan.Name
	}
	return gin.H{
		"payment":    p,
		"plan_name":  planName,
		"is_overdue": p.IsOverdue(today),
	}
}

func (h *PaymentHandler) List(c *gin.Context) {
	filters := repository.PaymentFilters{
		ClientID: uuidQuery(c, "client_id"),
		Status:   models.PaymentStatus(c.Query("status")),
		Limit:    intQuery(c, "limit", 0),
		Offset:   intQuery(c, "offset", 0),
	}
	if v := boolQuery(c, "overdue"); v != nil && *v {
		filters.OverdueOnly = true
	}
	payments, total, err := h.payments.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	today := models.Today()
	views := make([]gin.H, 0, len(payments))
	for i := range payments {
		views = append(views, paymentView(&payments[i], today))
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"payments": views, "total": total})
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var input services.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Payment created", payment)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	payment, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", paymentView(payment, models.Today()))
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	var input services.UpdatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	payment, err := h.payments.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment updated", payment)
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment deleted", nil)
}

type markPaidRequest struct {
	PaidDate      *models.Date `json:"paid_date"`
	PaymentMethod string       `json:"payment_method"`
}

func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	payment, err := h.payments.MarkPaid(c.Request.Context(), id, req.PaidDate, req.PaymentMethod)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment marked paid", payment)
}

func (h *PaymentHandler) MarkCancelled(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	payment, err := h.payments.MarkCancelled(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment cancelled", payment)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	payment, err := h.payments.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment confirmed", payment)
}

func (h *PaymentHandler) ListMethods(c *gin.Context) {
	methods, err := h.payments.ListMethods(c.Request.Context(), false)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", methods)
}

func (h *PaymentHandler) CreateMethod(c *gin.Context) {
	var input services.PaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	method, err := h.payments.CreateMethod(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Payment method created", method)
}

func (h *PaymentHandler) UpdateMethod(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment method id", nil)
		return
	}
	var input services.PaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	method, err := h.payments.UpdateMethod(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment method updated", method)
}

func (h *PaymentHandler) DeleteMethod(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment method id", nil)
		return
	}
	if err := h.payments.DeleteMethod(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment method deleted", nil)
}

// ClientList returns the caller's own ledger.
func (h *PaymentHandler) ClientList(c *gin.Context) {
	profile, err := h.clients.GetByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	filters := repository.PaymentFilters{
		ClientID: &profile.ID,
		Status:   models.PaymentStatus(c.Query("status")),
	}
	payments, total, err := h.payments.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	today := models.Today()
	views := make([]gin.H, 0, len(payments))
	for i := range payments {
		views = append(views, paymentView(&payments[i], today))
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"payments": views, "total": total})
}

// ClientMethods returns the active payout channels a client may report
// against.
func (h *PaymentHandler) ClientMethods(c *gin.Context) {
	methods, err := h.payments.ListMethods(c.Request.Context(), true)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", methods)
}

// ClientMarkPaid lets a client report one of their own invoices as paid.
func (h *PaymentHandler) ClientMarkPaid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	profile, err := h.clients.GetByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	var input services.ClientMarkPaidInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	payment, err := h.payments.ClientMarkPaid(c.Request.Context(), profile, id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment reported", payment)
}

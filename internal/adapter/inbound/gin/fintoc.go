package gin

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/fintoc-gateway/internal/domain/fintoc"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/inbound"
	apperrors "github.com/uniedit/fintoc-gateway/internal/utils/errors"
	"github.com/uniedit/fintoc-gateway/internal/utils/metrics"
	"go.uber.org/zap"
)

// Webhook outcomes recorded besides the domain's WebhookStatus values.
const (
	outcomeInvalidSignature = "invalid_signature"
	outcomeMalformed        = "malformed"
	outcomeError            = "error"
)

// maxWebhookBodyBytes bounds a webhook delivery. Fintoc events are a few KiB.
const maxWebhookBodyBytes int64 = 1 << 20

// --- Webhook Adapter ---

// fintocWebhookAdapter implements inbound.FintocWebhookHttpPort.
type fintocWebhookAdapter struct {
	domain  fintoc.FintocDomain
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewFintocWebhookAdapter creates the public Fintoc HTTP adapter. m may be nil.
func NewFintocWebhookAdapter(domain fintoc.FintocDomain, m *metrics.Metrics, logger *zap.Logger) inbound.FintocWebhookHttpPort {
	return &fintocWebhookAdapter{domain: domain, metrics: m, logger: logger}
}

// RegisterFintocWebhookRoutes registers the unauthenticated Fintoc routes.
// returnMiddleware only applies to the customer return routes.
func RegisterFintocWebhookRoutes(r gin.IRouter, adapter inbound.FintocWebhookHttpPort, returnMiddleware ...gin.HandlerFunc) {
	r.POST(fintoc.WebhookRoute, adapter.HandleWebhook)

	returns := r.Group("", returnMiddleware...)
	returns.GET(fintoc.ReturnSuccessRoute, adapter.ReturnSuccess)
	returns.GET(fintoc.ReturnCancelRoute, adapter.ReturnCancel)
}

func (a *fintocWebhookAdapter) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		a.recordOutcome(outcomeMalformed)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleFintocError(c, apperrors.PayloadTooLarge(tooLarge.Limit))
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_payload",
			Message: "failed to read request body",
		})
		return
	}

	status, err := a.domain.HandleWebhook(c.Request.Context(), c.GetHeader(fintoc.SignatureHeader), body)
	if err != nil {
		switch {
		case errors.Is(err, fintoc.ErrInvalidSignature):
			a.recordOutcome(outcomeInvalidSignature)
			c.JSON(http.StatusForbidden, model.ErrorResponse{
				Code:    "invalid_signature",
				Message: "Invalid Fintoc signature",
			})
		case errors.Is(err, fintoc.ErrMalformedPayload):
			a.recordOutcome(outcomeMalformed)
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Code:    "invalid_payload",
				Message: err.Error(),
			})
		default:
			a.recordOutcome(outcomeError)
			a.logger.Error("fintoc webhook failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Code:    "internal_error",
				Message: "internal error",
			})
		}
		return
	}

	a.recordOutcome(string(status))
	c.JSON(http.StatusOK, model.WebhookAckResponse{Status: string(status)})
}

func (a *fintocWebhookAdapter) ReturnSuccess(c *gin.Context) {
	a.handleReturn(c, false)
}

func (a *fintocWebhookAdapter) ReturnCancel(c *gin.Context) {
	a.handleReturn(c, true)
}

func (a *fintocWebhookAdapter) handleReturn(c *gin.Context, canceled bool) {
	location, err := a.domain.HandleReturn(
		c.Request.Context(),
		c.Query("reference"),
		c.Query("access_token"),
		c.Query("checkout_session_id"),
		canceled,
	)
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.Redirect(http.StatusFound, location)
}

func (a *fintocWebhookAdapter) recordOutcome(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordWebhookEvent(outcome)
	}
}

// Compile-time check
var _ inbound.FintocWebhookHttpPort = (*fintocWebhookAdapter)(nil)

// --- Admin Adapter ---

// fintocAdminAdapter implements inbound.FintocAdminHttpPort.
type fintocAdminAdapter struct {
	domain fintoc.FintocDomain
}

// NewFintocAdminAdapter creates the admin Fintoc HTTP adapter.
func NewFintocAdminAdapter(domain fintoc.FintocDomain) inbound.FintocAdminHttpPort {
	return &fintocAdminAdapter{domain: domain}
}

// RegisterFintocAdminRoutes registers admin routes. Authentication is applied by the caller.
func RegisterFintocAdminRoutes(r *gin.RouterGroup, adapter inbound.FintocAdminHttpPort) {
	f := r.Group("/fintoc")
	{
		f.POST("/transactions", adapter.CreateTransaction)
		f.GET("/transactions/:reference", adapter.GetTransaction)
		f.POST("/transactions/:reference/checkout", adapter.CreateCheckoutSession)
		f.POST("/transactions/:reference/refunds", adapter.RequestRefund)
		f.POST("/transactions/:reference/cancel-refund", adapter.CancelRefund)
		f.POST("/webhook-endpoint/sync", adapter.SyncWebhookEndpoint)
		f.GET("/events", adapter.ListEvents)
		f.GET("/events/:event_id", adapter.GetEvent)
	}
}

// CreateTransaction creates a draft transaction.
//
//	@Summary		Create transaction
//	@Description	Create a draft Fintoc payment transaction for a host order
//	@Tags			Fintoc
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		model.CreateTransactionRequest	true	"Create transaction request"
//	@Success		201		{object}	model.Transaction
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		409		{object}	model.ErrorResponse
//	@Router			/fintoc/transactions [post]
func (a *fintocAdminAdapter) CreateTransaction(c *gin.Context) {
	var req model.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleFintocError(c, apperrors.InvalidInput(err))
		return
	}

	tx, err := a.domain.CreateTransaction(c.Request.Context(), &req)
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// GetTransaction returns a transaction by reference.
//
//	@Summary		Get transaction
//	@Tags			Fintoc
//	@Produce		json
//	@Security		BearerAuth
//	@Param			reference	path		string	true	"Transaction reference"
//	@Success		200			{object}	model.Transaction
//	@Failure		401			{object}	model.ErrorResponse
//	@Failure		404			{object}	model.ErrorResponse
//	@Router			/fintoc/transactions/{reference} [get]
func (a *fintocAdminAdapter) GetTransaction(c *gin.Context) {
	tx, err := a.domain.GetTransaction(c.Request.Context(), c.Param("reference"))
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// CreateCheckoutSession opens (or reuses) the Fintoc checkout session of a transaction.
//
//	@Summary		Create checkout session
//	@Description	Create a Fintoc checkout session and return the customer redirect URL
//	@Tags			Fintoc
//	@Produce		json
//	@Security		BearerAuth
//	@Param			reference	path		string	true	"Transaction reference"
//	@Success		200			{object}	model.CheckoutSessionResponse
//	@Failure		404			{object}	model.ErrorResponse
//	@Failure		412			{object}	model.ErrorResponse
//	@Failure		422			{object}	model.ErrorResponse
//	@Failure		502			{object}	model.ErrorResponse
//	@Failure		503			{object}	model.ErrorResponse
//	@Router			/fintoc/transactions/{reference}/checkout [post]
func (a *fintocAdminAdapter) CreateCheckoutSession(c *gin.Context) {
	resp, err := a.domain.CreateCheckoutSession(c.Request.Context(), c.Param("reference"))
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RequestRefund refunds a paid transaction in full or in part.
//
//	@Summary		Request refund
//	@Description	Create a refund transaction and submit it to Fintoc. An empty body or amount 0 refunds in full.
//	@Tags			Fintoc
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			reference	path		string						true	"Source transaction reference"
//	@Param			request		body		model.CreateRefundRequest	false	"Refund request"
//	@Success		201			{object}	model.Transaction
//	@Failure		400			{object}	model.ErrorResponse
//	@Failure		404			{object}	model.ErrorResponse
//	@Failure		422			{object}	model.ErrorResponse
//	@Failure		502			{object}	model.ErrorResponse
//	@Router			/fintoc/transactions/{reference}/refunds [post]
func (a *fintocAdminAdapter) RequestRefund(c *gin.Context) {
	var req model.CreateRefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			handleFintocError(c, apperrors.InvalidInput(err))
			return
		}
	}

	refund, err := a.domain.RequestRefund(c.Request.Context(), c.Param("reference"), req.Amount)
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusCreated, refund)
}

// CancelRefund cancels a draft or pending refund.
//
//	@Summary		Cancel refund
//	@Tags			Fintoc
//	@Produce		json
//	@Security		BearerAuth
//	@Param			reference	path		string	true	"Refund transaction reference"
//	@Success		200			{object}	model.Transaction
//	@Failure		404			{object}	model.ErrorResponse
//	@Failure		422			{object}	model.ErrorResponse
//	@Failure		502			{object}	model.ErrorResponse
//	@Router			/fintoc/transactions/{reference}/cancel-refund [post]
func (a *fintocAdminAdapter) CancelRefund(c *gin.Context) {
	refund, err := a.domain.CancelRefund(c.Request.Context(), c.Param("reference"))
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusOK, refund)
}

// SyncWebhookEndpoint registers or updates the webhook endpoint at Fintoc.
//
//	@Summary		Sync webhook endpoint
//	@Tags			Fintoc
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.FintocWebhookEndpoint
//	@Failure		412	{object}	model.ErrorResponse
//	@Failure		502	{object}	model.ErrorResponse
//	@Router			/fintoc/webhook-endpoint/sync [post]
func (a *fintocAdminAdapter) SyncWebhookEndpoint(c *gin.Context) {
	endpoint, err := a.domain.SyncWebhookEndpoint(c.Request.Context())
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusOK, endpoint)
}

// ListEvents pages through the webhook event log.
//
//	@Summary		List webhook events
//	@Tags			Fintoc
//	@Produce		json
//	@Security		BearerAuth
//	@Param			state		query		string	false	"Filter by state"	Enums(received, processed, error)
//	@Param			event_type	query		string	false	"Filter by event type"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(200)
//	@Success		200			{object}	model.PaginatedResponse[model.FintocEvent]
//	@Failure		400			{object}	model.ErrorResponse
//	@Failure		401			{object}	model.ErrorResponse
//	@Router			/fintoc/events [get]
func (a *fintocAdminAdapter) ListEvents(c *gin.Context) {
	var filter model.FintocEventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handleFintocError(c, apperrors.InvalidInput(err))
		return
	}

	events, total, err := a.domain.ListEvents(c.Request.Context(), filter)
	if err != nil {
		handleFintocError(c, err)
		return
	}

	filter.DefaultPagination()
	c.JSON(http.StatusOK, model.NewPaginatedResponse(events, total, filter.Page, filter.PageSize))
}

// GetEvent returns a stored webhook event.
//
//	@Summary		Get webhook event
//	@Tags			Fintoc
//	@Produce		json
//	@Security		BearerAuth
//	@Param			event_id	path		string	true	"Fintoc event ID"
//	@Success		200			{object}	model.FintocEvent
//	@Failure		404			{object}	model.ErrorResponse
//	@Router			/fintoc/events/{event_id} [get]
func (a *fintocAdminAdapter) GetEvent(c *gin.Context) {
	event, err := a.domain.GetEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		handleFintocError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Compile-time check
var _ inbound.FintocAdminHttpPort = (*fintocAdminAdapter)(nil)

// --- Error Handler ---

func handleFintocError(c *gin.Context, err error) {
	var statusCode int
	var errorCode string
	var message string
	var details string

	var appErr *apperrors.AppError
	var validationErr *fintoc.ValidationError
	var providerErr *fintoc.ProviderRequestError

	switch {
	case errors.Is(err, fintoc.ErrForbidden):
		statusCode = http.StatusForbidden
		errorCode = "forbidden"
		message = "Forbidden"

	case errors.Is(err, fintoc.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		errorCode = "transaction_not_found"
		message = "Transaction not found"

	case errors.Is(err, fintoc.ErrEventNotFound):
		statusCode = http.StatusNotFound
		errorCode = "event_not_found"
		message = "Webhook event not found"

	case errors.Is(err, fintoc.ErrDuplicateReference):
		statusCode = http.StatusConflict
		errorCode = "duplicate_reference"
		message = "Transaction reference already exists"

	case errors.As(err, &validationErr):
		statusCode = http.StatusUnprocessableEntity
		errorCode = "validation_failed"
		message = validationErr.Message

	case errors.Is(err, fintoc.ErrValidation):
		statusCode = http.StatusUnprocessableEntity
		errorCode = "validation_failed"
		message = err.Error()

	case errors.Is(err, fintoc.ErrConfiguration):
		statusCode = http.StatusPreconditionFailed
		errorCode = "provider_not_configured"
		message = err.Error()

	case errors.Is(err, fintoc.ErrProviderUnreachable):
		statusCode = http.StatusServiceUnavailable
		errorCode = "provider_unreachable"
		message = fintoc.ErrProviderUnreachable.Error()

	case errors.As(err, &providerErr):
		statusCode = http.StatusBadGateway
		errorCode = "provider_request_failed"
		message = providerErr.Error()

	case errors.As(err, &appErr):
		statusCode = apperrors.GetStatusCode(err)
		errorCode = appErr.Code
		message = appErr.Message
		details = appErr.Details

	default:
		statusCode = apperrors.GetStatusCode(err)
		errorCode = "internal_error"
		message = "Internal server error"
	}

	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
		Details: details,
	})
}

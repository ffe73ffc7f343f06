package inbound

import "github.com/gin-gonic/gin"

// FintocWebhookHttpPort defines the public HTTP handlers called by Fintoc and the customer's browser.
type FintocWebhookHttpPort interface {
	// HandleWebhook handles POST /payment/fintoc/webhook
	HandleWebhook(c *gin.Context)

	// ReturnSuccess handles GET /payment/fintoc/return/success
	ReturnSuccess(c *gin.Context)

	// ReturnCancel handles GET /payment/fintoc/return/cancel
	ReturnCancel(c *gin.Context)
}

// FintocAdminHttpPort defines HTTP handlers for back-office operations.
type FintocAdminHttpPort interface {
	// CreateTransaction handles POST /transactions
	CreateTransaction(c *gin.Context)

	// GetTransaction handles GET /transactions/:reference
	GetTransaction(c *gin.Context)

	// CreateCheckoutSession handles POST /transactions/:reference/checkout
	CreateCheckoutSession(c *gin.Context)

	// RequestRefund handles POST /transactions/:reference/refunds
	RequestRefund(c *gin.Context)

	// CancelRefund handles POST /transactions/:reference/cancel-refund
	CancelRefund(c *gin.Context)

	// SyncWebhookEndpoint handles POST /webhook-endpoint/sync
	SyncWebhookEndpoint(c *gin.Context)

	// ListEvents handles GET /events
	ListEvents(c *gin.Context)

	// GetEvent handles GET /events/:event_id
	GetEvent(c *gin.Context)
}

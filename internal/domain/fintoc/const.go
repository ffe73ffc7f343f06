package fintoc

import "time"

// ProviderCode identifies Fintoc transactions and events.
const ProviderCode = "fintoc"

const (
	DefaultAPIBaseURL       = "https://api.fintoc.com"
	DefaultTimeout          = 20 * time.Second
	DefaultWebhookTolerance = 300 * time.Second
	DefaultStatusPagePath   = "/payment/status"

	SignatureHeader = "Fintoc-Signature"
)

// Routes exposed to Fintoc and to returning customers.
const (
	ReturnSuccessRoute = "/payment/fintoc/return/success"
	ReturnCancelRoute  = "/payment/fintoc/return/cancel"
	WebhookRoute       = "/payment/fintoc/webhook"
)

// Webhook event types.
const (
	EventCheckoutSessionFinished = "checkout_session.finished"
	EventPaymentIntentSucceeded  = "payment_intent.succeeded"
	EventPaymentIntentFailed     = "payment_intent.failed"
	EventPaymentIntentRejected   = "payment_intent.rejected"
	EventRefundInProgress        = "refund.in_progress"
	EventRefundSucceeded         = "refund.succeeded"
	EventRefundFailed            = "refund.failed"
)

// SupportedWebhookEvents is the list subscribed when registering the webhook endpoint.
var SupportedWebhookEvents = []string{
	EventCheckoutSessionFinished,
	EventPaymentIntentSucceeded,
	EventPaymentIntentFailed,
	EventPaymentIntentRejected,
	EventRefundInProgress,
	EventRefundSucceeded,
	EventRefundFailed,
}

// Fintoc payment method identifiers.
const (
	MethodPaymentIntent     = "payment_intent"
	MethodPaymentInitiation = "payment_initiation"
	MethodCard              = "card"
)

// Host payment method codes.
const (
	PaymentMethodCodeBankTransfer = "fintoc_bank_transfer"
	PaymentMethodCodeCard         = "fintoc_card"
)

// PaymentMethodMapping maps host payment method codes to Fintoc methods.
var PaymentMethodMapping = map[string]string{
	PaymentMethodCodeBankTransfer: MethodPaymentIntent,
	"bank_transfer":               MethodPaymentIntent,
	PaymentMethodCodeCard:         MethodCard,
	"card":                        MethodCard,
}

// Collection modes.
const (
	CollectionModeCollects = "collects"
	CollectionModeDirect   = "direct"
)

// Idempotency key suffixes.
const (
	IdempotencySuffixCheckout         = "checkout"
	IdempotencySuffixCheckoutFallback = "checkout-payment-initiation-fallback"
	IdempotencySuffixRefund           = "refund"
	IdempotencySuffixCancel           = "cancel"

	maxIdempotencyKeyLength = 255
)

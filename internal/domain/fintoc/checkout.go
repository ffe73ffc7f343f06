package fintoc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"go.uber.org/zap"
)

// PaymentMethodOption carries per-method options of a checkout session.
type PaymentMethodOption struct {
	RecipientAccount RecipientAccount `json:"recipient_account"`
}

// CheckoutPayload is the body of a checkout session creation request.
// It is treated as an immutable value: transforms return a new payload.
type CheckoutPayload struct {
	Amount               int64                          `json:"amount"`
	Currency             string                         `json:"currency"`
	SuccessURL           string                         `json:"success_url"`
	CancelURL            string                         `json:"cancel_url"`
	CustomerEmail        string                         `json:"customer_email"`
	Metadata             map[string]string              `json:"metadata"`
	PaymentMethods       []string                       `json:"payment_methods,omitempty"`
	PaymentMethodOptions map[string]PaymentMethodOption `json:"payment_method_options,omitempty"`
}

// UsesPaymentIntent reports whether payment_intent is requested as a method or option.
func (p CheckoutPayload) UsesPaymentIntent() bool {
	if slices.Contains(p.PaymentMethods, MethodPaymentIntent) {
		return true
	}
	_, ok := p.PaymentMethodOptions[MethodPaymentIntent]
	return ok
}

// WithPaymentInitiation returns a copy where payment_intent is replaced by
// payment_initiation in the methods list and the method options key.
func (p CheckoutPayload) WithPaymentInitiation() CheckoutPayload {
	out := p

	if p.Metadata != nil {
		out.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			out.Metadata[k] = v
		}
	}

	if p.PaymentMethods != nil {
		out.PaymentMethods = make([]string, len(p.PaymentMethods))
		for i, method := range p.PaymentMethods {
			if method == MethodPaymentIntent {
				method = MethodPaymentInitiation
			}
			out.PaymentMethods[i] = method
		}
	}

	if p.PaymentMethodOptions != nil {
		out.PaymentMethodOptions = make(map[string]PaymentMethodOption, len(p.PaymentMethodOptions))
		for key, option := range p.PaymentMethodOptions {
			if key == MethodPaymentIntent {
				key = MethodPaymentInitiation
			}
			out.PaymentMethodOptions[key] = option
		}
	}

	return out
}

// BuildIdempotencyKey returns the deterministic idempotency key for a transaction and purpose.
func BuildIdempotencyKey(txID int64, suffix string) string {
	key := fmt.Sprintf("fintoc-tx-%d-%s", txID, suffix)
	if len(key) > maxIdempotencyKeyLength {
		key = key[:maxIdempotencyKeyLength]
	}
	return key
}

// shouldRetryCheckoutWithV1 reports whether a /v2 failure looks like an unsupported API version.
func shouldRetryCheckoutWithV1(statusCode int, body map[string]any) bool {
	switch statusCode {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusGone:
		return true
	}
	message := strings.ToLower(errorText(body))
	for _, token := range []string{"unsupported", "not found", "version", "v2"} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

// shouldFallbackToPaymentInitiation reports whether err says payment_intent is not supported.
// This relies on free-text provider messages and is a best-effort heuristic.
func shouldFallbackToPaymentInitiation(err error) bool {
	message := err.Error()
	var reqErr *ProviderRequestError
	if errors.As(err, &reqErr) {
		message += " " + errorText(reqErr.Body)
	}
	message = strings.ToLower(message)
	if !strings.Contains(message, MethodPaymentIntent) {
		return false
	}
	for _, token := range []string{"invalid_enum", "unsupported", "not supported"} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

// CreateCheckoutSession creates (or reuses) the Fintoc checkout session of a transaction.
func (d *fintocDomain) CreateCheckoutSession(ctx context.Context, reference string) (*model.CheckoutSessionResponse, error) {
	tx, err := d.getTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	if tx.FintocRedirectURL != "" && tx.FintocCheckoutSessionID != "" {
		return &model.CheckoutSessionResponse{
			Reference:         tx.Reference,
			CheckoutSessionID: tx.FintocCheckoutSessionID,
			RedirectURL:       tx.FintocRedirectURL,
		}, nil
	}

	payload, err := d.prepareCheckoutPayload(tx)
	if err != nil {
		return nil, err
	}

	session, err := d.createCheckoutSessionWithFallback(ctx, tx, payload)
	if err != nil {
		return nil, err
	}

	sessionID := stringField(session, "id")
	redirectURL := stringField(session, "redirect_url")
	if sessionID == "" || redirectURL == "" {
		return nil, validationErrorf("Fintoc did not return checkout session data (id/redirect_url).")
	}

	tx.FintocCheckoutSessionID = sessionID
	tx.FintocRedirectURL = redirectURL
	tx.ProviderReference = sessionID
	if err := d.txDB.UpdateFields(ctx, tx.ID, map[string]any{
		"fintoc_checkout_session_id": sessionID,
		"fintoc_redirect_url":        redirectURL,
		"provider_reference":         sessionID,
	}); err != nil {
		return nil, fmt.Errorf("store checkout session: %w", err)
	}

	d.logger.Info("fintoc checkout session created",
		zap.String("reference", tx.Reference),
		zap.String("checkout_session_id", sessionID),
	)

	return &model.CheckoutSessionResponse{
		Reference:         tx.Reference,
		CheckoutSessionID: sessionID,
		RedirectURL:       redirectURL,
	}, nil
}

// prepareCheckoutPayload builds the checkout session payload of a transaction.
func (d *fintocDomain) prepareCheckoutPayload(tx *model.Transaction) (CheckoutPayload, error) {
	email := strings.TrimSpace(tx.CustomerEmail)
	if email == "" {
		return CheckoutPayload{}, validationErrorf(
			"Fintoc refunds require the customer email. Please set an email on the customer before requesting this payment.")
	}

	methods, err := d.paymentMethodsForSession(tx)
	if err != nil {
		return CheckoutPayload{}, err
	}

	successURL, cancelURL := d.returnURLs(tx)
	payload := CheckoutPayload{
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		CustomerEmail:  email,
		Metadata:       checkoutMetadata(tx),
		PaymentMethods: methods,
	}

	if d.cfg.CollectionMode == CollectionModeDirect && d.cfg.EnableBankTransfer &&
		(len(methods) == 0 || slices.Contains(methods, MethodPaymentIntent)) {
		payload.PaymentMethodOptions = map[string]PaymentMethodOption{
			MethodPaymentIntent: {RecipientAccount: d.cfg.RecipientAccount},
		}
	}

	return payload, nil
}

// paymentMethodsForSession resolves the Fintoc methods offered in the session.
// A nil result lets Fintoc show every available method.
func (d *fintocDomain) paymentMethodsForSession(tx *model.Transaction) ([]string, error) {
	selected := PaymentMethodMapping[tx.PaymentMethodCode]

	if selected == MethodPaymentIntent && !d.cfg.EnableBankTransfer {
		return nil, validationErrorf("Bank transfer is not enabled for this Fintoc provider.")
	}
	if selected == MethodCard && !d.cfg.EnableCard {
		return nil, validationErrorf("Card is not enabled for this Fintoc provider.")
	}
	if selected != "" {
		return []string{selected}, nil
	}

	switch {
	case d.cfg.EnableBankTransfer && d.cfg.EnableCard:
		return nil, nil
	case d.cfg.EnableBankTransfer:
		return []string{MethodPaymentIntent}, nil
	case d.cfg.EnableCard:
		return []string{MethodCard}, nil
	}
	return nil, validationErrorf("At least one Fintoc payment method must be enabled on the provider.")
}

func (d *fintocDomain) returnURLs(tx *model.Transaction) (string, string) {
	params := url.Values{}
	params.Set("reference", tx.Reference)
	params.Set("access_token", GenerateAccessToken(d.cfg.AccessTokenSecret, tx.Reference))
	query := params.Encode()

	return d.cfg.PublicBaseURL + ReturnSuccessRoute + "?" + query,
		d.cfg.PublicBaseURL + ReturnCancelRoute + "?" + query
}

func checkoutMetadata(tx *model.Transaction) map[string]string {
	metadata := map[string]string{
		"odoo_tx_reference":    tx.Reference,
		"odoo_model":           "payment.transaction",
		"odoo_document_number": tx.Reference,
	}
	if tx.PartnerID != "" {
		metadata["partner_id"] = tx.PartnerID
	}
	return metadata
}

// createCheckoutSessionWithFallback retries once with payment_initiation when
// Fintoc rejects payment_intent as a method.
func (d *fintocDomain) createCheckoutSessionWithFallback(ctx context.Context, tx *model.Transaction, payload CheckoutPayload) (map[string]any, error) {
	key := BuildIdempotencyKey(tx.ID, IdempotencySuffixCheckout)

	session, err := d.createCheckoutSession(ctx, payload, key)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrProviderRequestFailed) || !payload.UsesPaymentIntent() || !shouldFallbackToPaymentInitiation(err) {
		return nil, err
	}

	d.logger.Info("retrying fintoc checkout with payment_initiation fallback",
		zap.String("reference", tx.Reference),
	)
	return d.createCheckoutSession(ctx, payload.WithPaymentInitiation(),
		BuildIdempotencyKey(tx.ID, IdempotencySuffixCheckoutFallback))
}

// createCheckoutSession posts to /v2 and retries once on /v1 when /v2 looks unsupported.
func (d *fintocDomain) createCheckoutSession(ctx context.Context, payload CheckoutPayload, key string) (map[string]any, error) {
	status, body, err := d.api.Send(ctx, http.MethodPost, "/v2/checkout_sessions", payload, key)
	if err != nil {
		return nil, err
	}
	if status < http.StatusBadRequest {
		return body, nil
	}

	if shouldRetryCheckoutWithV1(status, body) {
		d.logger.Info("retrying fintoc checkout session creation on /v1 endpoint",
			zap.Int("v2_status", status),
		)
		return d.api.SendOrFail(ctx, http.MethodPost, "/v1/checkout_sessions", payload, key)
	}

	return nil, NewProviderRequestError(status, body)
}

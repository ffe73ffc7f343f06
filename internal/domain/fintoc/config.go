package fintoc

import (
	"strings"
	"time"
)

// RecipientAccount is the direct-mode bank account funds are transferred to.
type RecipientAccount struct {
	HolderID      string `json:"holder_id"`
	Number        string `json:"number"`
	Type          string `json:"type"`
	InstitutionID string `json:"institution_id"`
}

// Config is the immutable provider configuration handed to the domain.
type Config struct {
	SecretKey          string
	WebhookSecret      string
	WebhookTolerance   time.Duration
	APIBaseURL         string
	CollectionMode     string
	EnableBankTransfer bool
	EnableCard         bool
	RecipientAccount   RecipientAccount
	PublicBaseURL      string
	WebhookEndpointURL string
	AccessTokenSecret  string
	StatusPagePath     string
}

// withDefaults returns a copy with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.WebhookTolerance <= 0 {
		c.WebhookTolerance = DefaultWebhookTolerance
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.CollectionMode == "" {
		c.CollectionMode = CollectionModeCollects
	}
	if c.StatusPagePath == "" {
		c.StatusPagePath = DefaultStatusPagePath
	}
	c.PublicBaseURL = strings.TrimSuffix(c.PublicBaseURL, "/")
	return c
}

// DefaultPaymentMethodCodes returns the host method codes enabled by the toggles.
func (c Config) DefaultPaymentMethodCodes() []string {
	var codes []string
	if c.EnableBankTransfer {
		codes = append(codes, PaymentMethodCodeBankTransfer)
	}
	if c.EnableCard {
		codes = append(codes, PaymentMethodCodeCard)
	}
	return codes
}

// WebhookURL returns the public URL Fintoc should deliver webhooks to.
func (c Config) WebhookURL() string {
	if c.WebhookEndpointURL != "" {
		return c.WebhookEndpointURL
	}
	return c.PublicBaseURL + WebhookRoute
}

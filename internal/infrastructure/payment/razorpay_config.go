package payment

import (
	"errors"
	"strings"
	"time"

	"github.com/chiclet/backend/internal/infrastructure/config"
)

const razorpayAPIBaseURL = "https://api.razorpay.com/v1"

// RazorpayConfig contains the credentials for the Razorpay Orders API and webhooks
type RazorpayConfig struct {
	// KeyID is the public key id, also handed to the checkout widget
	KeyID string
	// KeySecret signs API requests and checkout callbacks
	KeySecret string
	// WebhookSecret signs webhook deliveries
	WebhookSecret string
	// BaseURL is the Orders API root
	BaseURL string
	// Currency is used when a request carries none
	Currency string
	Timeout  time.Duration
}

// Errors for configuration validation
var (
	ErrRazorpayMissingKeyID     = errors.New("razorpay: missing key id")
	ErrRazorpayMissingKeySecret = errors.New("razorpay: missing key secret")
	ErrRazorpayInvalidBaseURL   = errors.New("razorpay: base URL must be http(s)")
)

// RazorpayConfigFromApp maps application payment settings onto the adapter config
func RazorpayConfigFromApp(cfg config.PaymentConfig) *RazorpayConfig {
	return &RazorpayConfig{
		KeyID:         cfg.KeyID,
		KeySecret:     cfg.KeySecret,
		WebhookSecret: cfg.WebhookSecret,
		BaseURL:       cfg.APIBaseURL,
		Currency:      cfg.Currency,
		Timeout:       cfg.RequestTimeout,
	}
}

// Validate checks the API credentials. A config without a webhook secret is
// valid; webhook verification then fails closed.
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return ErrRazorpayMissingKeyID
	}
	if c.KeySecret == "" {
		return ErrRazorpayMissingKeySecret
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return ErrRazorpayInvalidBaseURL
	}
	return nil
}

func (c *RazorpayConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = razorpayAPIBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Currency == "" {
		c.Currency = "INR"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

package entities

import "strings"

// PaymentSettings is the live provider configuration. It is stored in the
// settings table (category "payment") and re-read on every provider call so
// the provider can be switched without a redeploy.
type PaymentSettings struct {
	Provider               string
	BaseURL                string
	MercadoPagoAccessToken string
	SacapayAPIURL          string
	SacapayPublicToken     string
	SacapayPrivateToken    string
}

// WebhookURL is where providers post payment notifications.
func (s PaymentSettings) WebhookURL() string {
	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if base == "" {
		return ""
	}
	return base + "/v1/payments/webhook"
}

package request

import (
	"encoding/json"
	"strconv"
	"strings"

	"loja_pix/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is the checkout payload of a signed-in user.
type CreatePaymentRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// ChargeRequest creates an item-less charge for an arbitrary customer.
type ChargeRequest struct {
	Amount           decimal.Decimal `json:"amount" swaggertype:"number"`
	Description      string          `json:"description"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	CustomerDocument string          `json:"customerDocument"`
}

func (r ChargeRequest) Payer() entities.Payer {
	return entities.Payer{
		Name:     strings.TrimSpace(r.CustomerName),
		Email:    strings.TrimSpace(r.CustomerEmail),
		Document: strings.TrimSpace(r.CustomerDocument),
	}
}

// PixLinkRequest lets an admin open a PIX checkout on behalf of a user.
type PixLinkRequest struct {
	UserID string `json:"userId" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
}

type ManualPaymentRequest struct {
	UserID string `json:"userId" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
}

type GrantRequest struct {
	UserID string `json:"userId" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
}

// WebhookRequest accepts both notification shapes we receive:
//
//	{"transaction_id": "...", "status": "paid"}        (Sacapay and generic)
//	{"type": "payment", "data": {"id": "123"}}         (Mercado Pago)
//
// Ids may arrive as JSON strings or numbers.
type WebhookRequest struct {
	TransactionID flexibleString `json:"transaction_id"`
	ID            flexibleString `json:"id"`
	Status        string         `json:"status"`
	Type          string         `json:"type"`
	Action        string         `json:"action"`
	Data          struct {
		ID flexibleString `json:"id"`
	} `json:"data"`
}

// ProviderRef resolves the provider-side identifier of the notified charge.
// For Mercado Pago the top-level id is the notification id, not the payment.
func (r WebhookRequest) ProviderRef() string {
	if v := strings.TrimSpace(string(r.Data.ID)); v != "" {
		return v
	}
	if v := strings.TrimSpace(string(r.TransactionID)); v != "" {
		return v
	}
	return strings.TrimSpace(string(r.ID))
}

// IsPaymentTopic is false for Mercado Pago notifications about other
// resources (merchant orders, chargebacks), which are acknowledged and ignored.
func (r WebhookRequest) IsPaymentTopic() bool {
	topic := strings.ToLower(strings.TrimSpace(r.Type))
	if topic == "" {
		topic = strings.ToLower(strings.TrimSpace(r.Action))
	}
	return topic == "" || strings.HasPrefix(topic, "payment")
}

type flexibleString string

func (s *flexibleString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == "" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexibleString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*s = flexibleString(n.String())
	return nil
}

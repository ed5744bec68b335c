package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"
)

const (
	DefaultSacapayAPIURL = "https://api.sacapay.com.br"

	sacapayCreatePath = "/v1/pix"
	sacapayStatusPath = "/v1/pix/status"
	maxProviderBody   = 1 << 20
)

type SacapayClient struct {
	baseURL      string
	publicToken  string
	privateToken string
	webhookURL   string
	client       *http.Client
}

var _ interfaces.IPixProvider = (*SacapayClient)(nil)

func NewSacapayClient(settings entities.PaymentSettings, client *http.Client) (*SacapayClient, error) {
	if strings.TrimSpace(settings.SacapayPublicToken) == "" || strings.TrimSpace(settings.SacapayPrivateToken) == "" {
		return nil, fmt.Errorf("%w: sacapay tokens not configured", interfaces.ErrProviderUnavailable)
	}
	base := strings.TrimRight(strings.TrimSpace(settings.SacapayAPIURL), "/")
	if base == "" {
		base = DefaultSacapayAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SacapayClient{
		baseURL:      base,
		publicToken:  settings.SacapayPublicToken,
		privateToken: settings.SacapayPrivateToken,
		webhookURL:   settings.WebhookURL(),
		client:       client,
	}, nil
}

type sacapayCustomer struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Document string `json:"document,omitempty"`
}

type sacapayCreateRequest struct {
	TokenPublic  string          `json:"token_public"`
	TokenPrivate string          `json:"token_private"`
	Amount       json.Number     `json:"amount"`
	Description  string          `json:"description"`
	ExternalID   string          `json:"external_id"`
	WebhookURL   string          `json:"webhook_url,omitempty"`
	Customer     sacapayCustomer `json:"customer"`
}

type sacapayStatusRequest struct {
	TokenPublic  string `json:"token_public"`
	TokenPrivate string `json:"token_private"`
	ID           string `json:"id"`
}

type sacapayEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type sacapayCharge struct {
	ID        flexibleID `json:"id"`
	PixCode   string     `json:"pix_code"`
	PixKey    string     `json:"pix_key"`
	QRCode    string     `json:"qr_code"`
	ExpiresAt string     `json:"expires_at"`
}

type sacapayStatus struct {
	Status string `json:"status"`
}

// flexibleID accepts ids sent either as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexibleID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func (c *SacapayClient) RequestPixCharge(ctx context.Context, req interfaces.PixChargeRequest) (entities.PixCharge, error) {
	log.Printf("[payment][sacapay] create start correlation_id=%s amount=%s", req.CorrelationID, req.Amount.StringFixed(2))
	body := sacapayCreateRequest{
		TokenPublic:  c.publicToken,
		TokenPrivate: c.privateToken,
		Amount:       json.Number(req.Amount.StringFixed(2)),
		Description:  req.Description,
		ExternalID:   req.CorrelationID,
		WebhookURL:   c.webhookURL,
		Customer: sacapayCustomer{
			Name:     req.Payer.Name,
			Email:    req.Payer.Email,
			Document: onlyDigits(req.Payer.Document),
		},
	}
	var charge sacapayCharge
	if err := c.call(ctx, sacapayCreatePath, body, &charge); err != nil {
		log.Printf("[payment][sacapay] create failed correlation_id=%s err=%v", req.CorrelationID, err)
		return entities.PixCharge{}, err
	}
	if charge.PixCode == "" || charge.ID == "" {
		return entities.PixCharge{}, fmt.Errorf("%w: sacapay response without pix code", interfaces.ErrProviderUnavailable)
	}

	out := entities.PixCharge{
		PixCode:     charge.PixCode,
		QRCodeURL:   qrImageOrURL(charge.QRCode, charge.PixCode),
		ProviderRef: string(charge.ID),
		Provider:    entities.ProviderSacapay,
	}
	if t, err := time.Parse(time.RFC3339, charge.ExpiresAt); err == nil {
		out.ExpiresAt = t.UTC()
	}
	log.Printf("[payment][sacapay] create success correlation_id=%s provider_ref=%s", req.CorrelationID, out.ProviderRef)
	return out, nil
}

func (c *SacapayClient) FetchStatus(ctx context.Context, providerRef string) (string, error) {
	var st sacapayStatus
	err := c.call(ctx, sacapayStatusPath, sacapayStatusRequest{
		TokenPublic:  c.publicToken,
		TokenPrivate: c.privateToken,
		ID:           providerRef,
	}, &st)
	if err != nil {
		log.Printf("[payment][sacapay] status failed provider_ref=%s err=%v", providerRef, err)
		return "", err
	}
	log.Printf("[payment][sacapay] status provider_ref=%s status=%s", providerRef, st.Status)
	return st.Status, nil
}

// call posts body and decodes the "data" member of a successful envelope.
func (c *SacapayClient) call(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}

	var env sacapayEnvelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: sacapay status=%d message=%q", interfaces.ErrProviderUnavailable, resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: sacapay invalid response: %v", interfaces.ErrProviderUnavailable, decodeErr)
	}
	if !env.Success {
		return fmt.Errorf("%w: sacapay rejected: %s", interfaces.ErrProviderUnavailable, env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: sacapay invalid data: %v", interfaces.ErrProviderUnavailable, err)
	}
	return nil
}

// qrImageOrURL normalizes what providers return as QR: a URL, a data URI or
// bare base64 PNG. Without one, the public renderer is used.
func qrImageOrURL(qr, pixCode string) string {
	qr = strings.TrimSpace(qr)
	switch {
	case qr == "":
		return QRCodeURL(pixCode)
	case strings.HasPrefix(qr, "http://"), strings.HasPrefix(qr, "https://"), strings.HasPrefix(qr, "data:"):
		return qr
	default:
		return "data:image/png;base64," + qr
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

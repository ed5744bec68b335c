package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrMissingMercadoPagoAccessToken = fmt.Errorf("%w: missing mercado pago access token", interfaces.ErrProviderUnavailable)
var ErrMercadoPagoGatewayNotConfigured = fmt.Errorf("%w: mercado pago gateway not configured", interfaces.ErrProviderUnavailable)

// mercadoPagoDateLayout is the timestamp format Mercado Pago accepts for
// date_of_expiration.
const mercadoPagoDateLayout = "2006-01-02T15:04:05.000-07:00"

// mercadoPagoPayments is the part of the SDK payment client the gateway uses.
type mercadoPagoPayments interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
}

type MercadoPagoGateway struct {
	client          mercadoPagoPayments
	accessToken     string
	notificationURL string
	window          time.Duration
	now             func() time.Time
}

var _ interfaces.IPixProvider = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken, notificationURL string) (*MercadoPagoGateway, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		log.Printf("[payment][mercadopago] missing access token")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[payment][mercadopago] failed creating sdk config err=%v", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}

	return newMercadoPagoGateway(payment.NewClient(cfg), accessToken, notificationURL), nil
}

func newMercadoPagoGateway(client mercadoPagoPayments, accessToken, notificationURL string) *MercadoPagoGateway {
	return &MercadoPagoGateway{
		client:          client,
		accessToken:     accessToken,
		notificationURL: notificationURL,
		window:          FallbackWindow,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// mercadoPagoPixResponse picks the PIX fields out of the SDK response after a
// JSON round trip, so only the wire names matter.
type mercadoPagoPixResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	DateOfExpiration   string `json:"date_of_expiration"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (g *MercadoPagoGateway) RequestPixCharge(ctx context.Context, req interfaces.PixChargeRequest) (entities.PixCharge, error) {
	if g == nil || g.client == nil {
		log.Printf("[payment][mercadopago] gateway not configured")
		return entities.PixCharge{}, ErrMercadoPagoGatewayNotConfigured
	}
	log.Printf("[payment][mercadopago] create start correlation_id=%s amount=%s", req.CorrelationID, req.Amount.StringFixed(2))

	expiresAt := g.now().Add(g.window)
	payload := map[string]any{
		"transaction_amount": req.Amount.Round(2).InexactFloat64(),
		"description":        req.Description,
		"payment_method_id":  "pix",
		"external_reference": req.CorrelationID,
		"date_of_expiration": expiresAt.Format(mercadoPagoDateLayout),
		"payer":              g.payerPayload(req.Payer),
	}
	if g.notificationURL != "" {
		payload["notification_url"] = g.notificationURL
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return entities.PixCharge{}, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	var sdkReq payment.Request
	if err := json.Unmarshal(raw, &sdkReq); err != nil {
		log.Printf("[payment][mercadopago] payload unmarshal failed err=%v", err)
		return entities.PixCharge{}, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}

	resp, err := g.client.Create(ctx, sdkReq)
	if err != nil {
		log.Printf("[payment][mercadopago] sdk create failed correlation_id=%s err=%v", req.CorrelationID, err)
		return entities.PixCharge{}, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	if resp == nil {
		return entities.PixCharge{}, fmt.Errorf("%w: empty mercado pago response", interfaces.ErrProviderUnavailable)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[payment][mercadopago] response marshal failed err=%v", err)
		return entities.PixCharge{}, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	var pix mercadoPagoPixResponse
	if err := json.Unmarshal(b, &pix); err != nil {
		return entities.PixCharge{}, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	code := pix.PointOfInteraction.TransactionData.QRCode
	if code == "" {
		log.Printf("[payment][mercadopago] response without qr code provider_payment_id=%d status=%s", pix.ID, pix.Status)
		return entities.PixCharge{}, fmt.Errorf("%w: mercado pago response without qr code", interfaces.ErrProviderUnavailable)
	}

	out := entities.PixCharge{
		PixCode:     code,
		QRCodeURL:   qrImageOrURL(pix.PointOfInteraction.TransactionData.QRCodeBase64, code),
		ProviderRef: strconv.FormatInt(pix.ID, 10),
		ExpiresAt:   expiresAt,
		Provider:    entities.ProviderMercadoPago,
	}
	if t, err := parseMercadoPagoTime(pix.DateOfExpiration); err == nil && t.After(g.now()) {
		out.ExpiresAt = t
	}
	log.Printf("[payment][mercadopago] create success provider_payment_id=%s provider_status=%s", out.ProviderRef, pix.Status)
	return out, nil
}

func (g *MercadoPagoGateway) FetchStatus(ctx context.Context, providerRef string) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrMercadoPagoGatewayNotConfigured
	}
	id, err := strconv.Atoi(strings.TrimSpace(providerRef))
	if err != nil {
		return "", fmt.Errorf("%w: invalid mercado pago payment id %q", interfaces.ErrProviderUnavailable, providerRef)
	}
	resp, err := g.client.Get(ctx, id)
	if err != nil {
		log.Printf("[payment][mercadopago] sdk get failed provider_payment_id=%d err=%v", id, err)
		return "", fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty mercado pago response", interfaces.ErrProviderUnavailable)
	}
	log.Printf("[payment][mercadopago] status provider_payment_id=%d status=%s", id, resp.Status)
	return resp.Status, nil
}

func (g *MercadoPagoGateway) payerPayload(p entities.Payer) map[string]any {
	payer := map[string]any{}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		// Sandbox accounts reject charges without a payer email.
		if configured := strings.TrimSpace(os.Getenv("MERCADOPAGO_TEST_PAYER_EMAIL")); configured != "" {
			email = configured
		} else if strings.HasPrefix(g.accessToken, "TEST-") {
			email = "test_user_br@testuser.com"
		}
	}
	if email != "" {
		payer["email"] = email
	}
	if first, last := splitName(p.Name); first != "" {
		payer["first_name"] = first
		if last != "" {
			payer["last_name"] = last
		}
	}
	if doc := onlyDigits(p.Document); doc != "" {
		docType := "CPF"
		if len(doc) == 14 {
			docType = "CNPJ"
		}
		payer["identification"] = map[string]any{"type": docType, "number": doc}
	}
	return payer
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func parseMercadoPagoTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty time")
	}
	for _, layout := range []string{time.RFC3339Nano, mercadoPagoDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}

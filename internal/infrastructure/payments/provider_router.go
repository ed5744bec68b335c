package payments

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"
)

// PixProviderRouter picks the configured provider on every call. Settings are
// read from the store each time so an admin can switch providers or rotate
// credentials without restarting.
type PixProviderRouter struct {
	settings    interfaces.ISettingsRepository
	mercadoPago func(entities.PaymentSettings) (interfaces.IPixProvider, error)
	sacapay     func(entities.PaymentSettings) (interfaces.IPixProvider, error)
	mockMode    func() bool
}

var _ interfaces.IPixProvider = (*PixProviderRouter)(nil)

func NewPixProviderRouter(settings interfaces.ISettingsRepository) *PixProviderRouter {
	httpClient := &http.Client{Timeout: 20 * time.Second}
	return &PixProviderRouter{
		settings: settings,
		mercadoPago: func(s entities.PaymentSettings) (interfaces.IPixProvider, error) {
			return NewMercadoPagoGateway(s.MercadoPagoAccessToken, s.WebhookURL())
		},
		sacapay: func(s entities.PaymentSettings) (interfaces.IPixProvider, error) {
			return NewSacapayClient(s, httpClient)
		},
		mockMode: isPaymentGatewayMockEnabled,
	}
}

func (r *PixProviderRouter) RequestPixCharge(ctx context.Context, req interfaces.PixChargeRequest) (entities.PixCharge, error) {
	provider, err := r.resolve(ctx)
	if err != nil {
		return entities.PixCharge{}, err
	}
	return provider.RequestPixCharge(ctx, req)
}

func (r *PixProviderRouter) FetchStatus(ctx context.Context, providerRef string) (string, error) {
	provider, err := r.resolve(ctx)
	if err != nil {
		return "", err
	}
	return provider.FetchStatus(ctx, providerRef)
}

func (r *PixProviderRouter) resolve(ctx context.Context) (interfaces.IPixProvider, error) {
	if r.mockMode != nil && r.mockMode() {
		log.Printf("[payment][router] mock mode enabled, provider disabled")
		return nil, fmt.Errorf("%w: gateway mock mode", interfaces.ErrProviderUnavailable)
	}
	if r.settings == nil {
		return nil, fmt.Errorf("%w: settings store not configured", interfaces.ErrProviderUnavailable)
	}
	s, err := r.settings.GetPaymentSettings(ctx)
	if err != nil {
		log.Printf("[payment][router] failed loading settings err=%v", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
	}

	switch name := NormalizeProviderName(s.Provider); name {
	case entities.ProviderMercadoPago:
		return r.mercadoPago(s)
	case entities.ProviderSacapay:
		return r.sacapay(s)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", interfaces.ErrProviderUnavailable, s.Provider)
	}
}

// NormalizeProviderName maps the stored provider label to a provider tag.
// An empty label selects Sacapay.
func NormalizeProviderName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sacapay":
		return entities.ProviderSacapay
	case "mercadopago", "mercado_pago", "mercado-pago", "mp":
		return entities.ProviderMercadoPago
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

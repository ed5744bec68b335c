package interfaces

import (
	"context"
	"errors"
	"time"

	"loja_pix/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// ErrProviderUnavailable is the single error kind for any provider failure:
// bad credentials, malformed payer, network error, non-2xx, timeout.
var ErrProviderUnavailable = errors.New("pix provider unavailable")

type PixChargeRequest struct {
	Amount        decimal.Decimal
	Description   string
	CorrelationID string
	Payer         entities.Payer
}

// IPixProvider abstracts external PIX providers (Sacapay, Mercado Pago).
//
// One call, no internal retries; retry and fallback policy belongs to the caller.
type IPixProvider interface {
	RequestPixCharge(ctx context.Context, req PixChargeRequest) (entities.PixCharge, error)
	// FetchStatus returns the provider-side status string for a charge.
	FetchStatus(ctx context.Context, providerRef string) (string, error)
}

// IFallbackPixGenerator builds the local demo PIX payload.
type IFallbackPixGenerator interface {
	Generate(amount decimal.Decimal, correlationID string, now time.Time) entities.PixCharge
}

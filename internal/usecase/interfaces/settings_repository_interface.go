package interfaces

import (
	"context"

	"loja_pix/internal/domain/entities"
)

// ISettingsRepository reads the live payment configuration.
type ISettingsRepository interface {
	GetPaymentSettings(ctx context.Context) (entities.PaymentSettings, error)
}

package response

import (
	"time"

	"loja_pix/internal/domain/entities"
)

type PixResponse struct {
	PixCode     string    `json:"pixCode"`
	QRCodeURL   string    `json:"qrCodeUrl"`
	ProviderRef string    `json:"providerRef,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Provider    string    `json:"provider"`
}

type CustomerResponse struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Document string `json:"document,omitempty"`
}

// PaymentResponse renders the amount with exactly two decimals, as a string,
// so clients never see binary floating point money.
type PaymentResponse struct {
	ID            string            `json:"id"`
	CorrelationID string            `json:"correlationId"`
	ProviderRef   string            `json:"providerRef,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	ItemID        string            `json:"itemId,omitempty"`
	Amount        string            `json:"amount"`
	Description   string            `json:"description,omitempty"`
	Status        string            `json:"status"`
	Method        string            `json:"method"`
	Provider      string            `json:"provider"`
	PixCode       string            `json:"pixCode,omitempty"`
	QRCodeURL     string            `json:"qrCodeUrl,omitempty"`
	ExpiresAt     time.Time         `json:"expiresAt"`
	Customer      *CustomerResponse `json:"customer,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	PaidAt        *time.Time        `json:"paidAt,omitempty"`
}

type CreatePaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Pix     PixResponse     `json:"pix"`
}

type PaymentStatusResponse struct {
	Payment PaymentResponse `json:"payment"`
	IsValid bool            `json:"isValid"`
}

type GrantResponse struct {
	UserID  string `json:"userId"`
	ItemID  string `json:"itemId"`
	Granted bool   `json:"granted"`
}

type WebhookResponse struct {
	Received  bool   `json:"received"`
	PaymentID string `json:"paymentId,omitempty"`
	Status    string `json:"status,omitempty"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	out := PaymentResponse{
		ID:            p.ID,
		CorrelationID: p.CorrelationID,
		ProviderRef:   p.ProviderRef,
		UserID:        p.UserID,
		ItemID:        p.ItemID,
		Amount:        p.Amount.StringFixed(2),
		Description:   p.Description,
		Status:        string(p.Status),
		Method:        string(p.Method),
		Provider:      p.Provider,
		PixCode:       p.PixCode,
		QRCodeURL:     p.QRCodeURL,
		ExpiresAt:     p.ExpiresAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		PaidAt:        p.PaidAt,
	}
	if p.Customer != (entities.Payer{}) {
		out.Customer = &CustomerResponse{Name: p.Customer.Name, Email: p.Customer.Email, Document: p.Customer.Document}
	}
	return out
}

func FromPixCharge(c entities.PixCharge) PixResponse {
	return PixResponse{
		PixCode:     c.PixCode,
		QRCodeURL:   c.QRCodeURL,
		ProviderRef: c.ProviderRef,
		ExpiresAt:   c.ExpiresAt,
		Provider:    c.Provider,
	}
}

func FromPaymentResult(p entities.Payment, pix entities.PixCharge) CreatePaymentResponse {
	return CreatePaymentResponse{Payment: FromPayment(p), Pix: FromPixCharge(pix)}
}

func FromPaymentStatus(p entities.Payment, isValid bool) PaymentStatusResponse {
	return PaymentStatusResponse{Payment: FromPayment(p), IsValid: isValid}
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	request "loja_pix/internal/adapter/http/dto/request"
	response "loja_pix/internal/adapter/http/dto/response"
	"loja_pix/internal/adapter/http/middleware"
	"loja_pix/internal/usecase"
	"loja_pix/internal/usecase/interfaces"
	"loja_pix/pkg"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

var (
	errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_INPUT", "Invalid payment payload", http.StatusBadRequest)
	errPaymentNotFound       = pkg.NewDomainErrorSimple("NOT_FOUND", "Payment not found", http.StatusNotFound)
)

// qrSize is the side, in pixels, of the rendered PIX QR code.
const qrSize = 256

// PaymentHandler exposes the payment orchestrator over HTTP.
//
// User routes only ever see the caller's own payments; a payment owned by
// someone else answers 404 so ids cannot be guessed.
type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// CreatePayment godoc
// @Summary      Start a PIX checkout for an item
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      request.CreatePaymentRequest  true  "Item to buy"
// @Success      201   {object}  response.CreatePaymentResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      409   {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /payments/create [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	session := middleware.CurrentSession(c)
	var payload request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[payment][handler] create invalid payload user_id=%s err=%v", session.UserID, err)
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] create start user_id=%s item_id=%s", session.UserID, payload.ItemID)

	result, err := h.usecase.CreatePayment(c.Request.Context(), usecase.CreatePaymentCommand{
		UserID: session.UserID,
		ItemID: payload.ItemID,
	})
	if err != nil {
		log.Printf("[payment][handler] create failed user_id=%s item_id=%s err=%v", session.UserID, payload.ItemID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] create success payment_id=%s provider=%s", result.Payment.ID, result.Pix.Provider)

	c.JSON(http.StatusCreated, response.FromPaymentResult(result.Payment, result.Pix))
}

// CreateCharge godoc
// @Summary      Create an item-less PIX charge
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      request.ChargeRequest  true  "Charge"
// @Success      201   {object}  response.CreatePaymentResponse
// @Failure      400   {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /payments/charge [post]
func (h *PaymentHandler) CreateCharge(c *gin.Context) {
	var payload request.ChargeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] charge start amount=%s", payload.Amount.StringFixed(2))

	result, err := h.usecase.CreatePayment(c.Request.Context(), usecase.CreatePaymentCommand{
		Amount:      payload.Amount,
		Description: strings.TrimSpace(payload.Description),
		Payer:       payload.Payer(),
	})
	if err != nil {
		log.Printf("[payment][handler] charge failed err=%v", err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromPaymentResult(result.Payment, result.Pix))
}

// CreatePixLink godoc
// @Summary      Start a PIX checkout on behalf of a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      request.PixLinkRequest  true  "User and item"
// @Success      201   {object}  response.CreatePaymentResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      409   {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /payments/create-pix-link [post]
func (h *PaymentHandler) CreatePixLink(c *gin.Context) {
	var payload request.PixLinkRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	admin := middleware.CurrentSession(c)
	log.Printf("[payment][handler] pix link start admin_id=%s user_id=%s item_id=%s", admin.UserID, payload.UserID, payload.ItemID)

	result, err := h.usecase.CreatePayment(c.Request.Context(), usecase.CreatePaymentCommand{
		UserID: payload.UserID,
		ItemID: payload.ItemID,
	})
	if err != nil {
		log.Printf("[payment][handler] pix link failed user_id=%s item_id=%s err=%v", payload.UserID, payload.ItemID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] pix link success payment_id=%s provider=%s", result.Payment.ID, result.Pix.Provider)

	c.JSON(http.StatusCreated, response.FromPaymentResult(result.Payment, result.Pix))
}

// GetPayment godoc
// @Summary      Payment status
// @Tags         payments
// @Produce      json
// @Param        paymentId  path      string  true  "Payment id"
// @Success      200        {object}  response.PaymentStatusResponse
// @Failure      404        {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /payments/{paymentId} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.FromPaymentStatus(view.Payment, view.IsValid))
}

// GetQRCode renders the stored PIX code as a PNG.
func (h *PaymentHandler) GetQRCode(c *gin.Context) {
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if view.Payment.PixCode == "" {
		c.JSON(errPaymentNotFound.HTTPStatus, errPaymentNotFound.ToHTTPError())
		return
	}

	png, err := qrcode.Encode(view.Payment.PixCode, qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("[payment][handler] qrcode failed payment_id=%s err=%v", view.Payment.ID, err)
		appErr := pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// CancelPayment lets the owner abandon a pending checkout.
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}
	p, err := h.usecase.MarkCancelled(c.Request.Context(), view.Payment.ID)
	if err != nil {
		log.Printf("[payment][handler] cancel failed payment_id=%s err=%v", view.Payment.ID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

// Webhook godoc
// @Summary      Provider payment notification
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        body  body      request.WebhookRequest  true  "Notification"
// @Success      200   {object}  response.WebhookResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      404   {object}  pkg.HTTPError
// @Router       /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var payload request.WebhookRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[payment][webhook] invalid payload err=%v", err)
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	if !payload.IsPaymentTopic() {
		log.Printf("[payment][webhook] ignored topic type=%q action=%q", payload.Type, payload.Action)
		c.JSON(http.StatusOK, response.WebhookResponse{Received: true})
		return
	}

	p, err := h.usecase.HandleProviderNotification(c.Request.Context(), usecase.ProviderNotification{
		ProviderRef: payload.ProviderRef(),
		Status:      payload.Status,
	})
	switch {
	case errors.Is(err, usecase.ErrInvalidTransition):
		// Late notification for a payment that already settled the other way.
		log.Printf("[payment][webhook] stale notification provider_ref=%s err=%v", payload.ProviderRef(), err)
		c.JSON(http.StatusOK, response.WebhookResponse{Received: true})
		return
	case err != nil:
		log.Printf("[payment][webhook] failed provider_ref=%s err=%v", payload.ProviderRef(), err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][webhook] processed payment_id=%s status=%s", p.ID, p.Status)

	c.JSON(http.StatusOK, response.WebhookResponse{Received: true, PaymentID: p.ID, Status: string(p.Status)})
}

// CreateManualPayment records an out-of-band payment and delivers the item.
func (h *PaymentHandler) CreateManualPayment(c *gin.Context) {
	var payload request.ManualPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	admin := middleware.CurrentSession(c)
	log.Printf("[payment][handler] manual start admin_id=%s user_id=%s item_id=%s", admin.UserID, payload.UserID, payload.ItemID)

	p, err := h.usecase.CreateManualPayment(c.Request.Context(), payload.UserID, payload.ItemID)
	if err != nil {
		log.Printf("[payment][handler] manual failed user_id=%s item_id=%s err=%v", payload.UserID, payload.ItemID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusCreated, response.FromPayment(p))
}

// ApprovePayment marks a pending payment as paid now.
func (h *PaymentHandler) ApprovePayment(c *gin.Context) {
	paymentID := c.Param("paymentId")
	log.Printf("[payment][handler] approve start payment_id=%s admin_id=%s", paymentID, middleware.CurrentSession(c).UserID)

	p, err := h.usecase.MarkApproved(c.Request.Context(), paymentID, time.Now().UTC())
	if err != nil {
		log.Printf("[payment][handler] approve failed payment_id=%s err=%v", paymentID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	paymentID := c.Param("paymentId")
	log.Printf("[payment][handler] reject start payment_id=%s admin_id=%s", paymentID, middleware.CurrentSession(c).UserID)

	p, err := h.usecase.MarkFailed(c.Request.Context(), paymentID)
	if err != nil {
		log.Printf("[payment][handler] reject failed payment_id=%s err=%v", paymentID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

func (h *PaymentHandler) loadOwned(c *gin.Context) (usecase.PaymentStatusView, bool) {
	paymentID := c.Param("paymentId")
	session := middleware.CurrentSession(c)

	view, err := h.usecase.GetStatus(c.Request.Context(), paymentID)
	if err != nil {
		log.Printf("[payment][handler] get failed payment_id=%s err=%v", paymentID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return usecase.PaymentStatusView{}, false
	}
	if !session.IsAdmin() && view.Payment.UserID != session.UserID {
		log.Printf("[payment][handler] foreign payment payment_id=%s user_id=%s", paymentID, session.UserID)
		c.JSON(errPaymentNotFound.HTTPStatus, errPaymentNotFound.ToHTTPError())
		return usecase.PaymentStatusView{}, false
	}
	return view, true
}

func mapPaymentError(err error) *pkg.AppError {
	var dup *usecase.DuplicatePendingPaymentError
	switch {
	case errors.Is(err, usecase.ErrEntitlementGrantFailure):
		return pkg.NewDomainError("ENTITLEMENT_GRANT_FAILURE", "Payment could not be settled; retry later", err, http.StatusInternalServerError)
	case errors.As(err, &dup):
		appErr := pkg.NewDomainErrorSimple("DUPLICATE_PENDING_PAYMENT", "A pending payment for this item already exists", http.StatusConflict)
		if dup.PaymentID != "" {
			appErr = appErr.WithPaymentID(dup.PaymentID)
		}
		return appErr
	case errors.Is(err, usecase.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "Payment is no longer pending", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrItemAlreadyOwned):
		return pkg.NewDomainErrorSimple("INVALID_INPUT", "User already owns this item", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrItemInactive):
		return pkg.NewDomainErrorSimple("INVALID_INPUT", "Item is not available for sale", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidInput):
		return pkg.NewDomainErrorSimple("INVALID_INPUT", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrItemNotFound):
		return pkg.NewDomainErrorSimple("NOT_FOUND", "Item not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrUserNotFound):
		return pkg.NewDomainErrorSimple("NOT_FOUND", "User not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrNotFound):
		return errPaymentNotFound
	case errors.Is(err, interfaces.ErrProviderUnavailable):
		return pkg.NewDomainError("PROVIDER_UNAVAILABLE", "Payment provider unavailable", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

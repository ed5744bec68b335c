package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loja_pix/internal/adapter/http/handlers/mocks"
	"loja_pix/internal/adapter/http/middleware"
	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase"
	"loja_pix/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return body
}

func pendingPayment(id, userID string) entities.Payment {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return entities.Payment{
		ID:        id,
		UserID:    userID,
		ItemID:    "item-1",
		Amount:    decimal.RequireFromString("99.90"),
		Status:    entities.PaymentStatusPending,
		Method:    entities.PaymentMethodPix,
		Provider:  entities.ProviderFallback,
		PixCode:   "00020126360014BR.GOV.BCB.PIX",
		ExpiresAt: now.Add(30 * time.Minute),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing item id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/create", asUser("user-1", "user"), h.CreatePayment)

		w := doJSON(r, http.MethodPost, "/v1/payments/create", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if decodeBody(t, w)["code"] != "INVALID_INPUT" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("duplicate pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/create", asUser("user-1", "user"), h.CreatePayment)

		uc.EXPECT().CreatePayment(gomock.Any(), usecase.CreatePaymentCommand{UserID: "user-1", ItemID: "item-1"}).
			Return(usecase.PaymentResult{}, &usecase.DuplicatePendingPaymentError{PaymentID: "pay-0"})

		w := doJSON(r, http.MethodPost, "/v1/payments/create", `{"itemId":"item-1"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["code"] != "DUPLICATE_PENDING_PAYMENT" || body["paymentId"] != "pay-0" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/create", asUser("user-1", "user"), h.CreatePayment)

		p := pendingPayment("pay-1", "user-1")
		uc.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(usecase.PaymentResult{Payment: p, Pix: p.Pix()}, nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/create", `{"itemId":"item-1"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		body := decodeBody(t, w)
		payment := body["payment"].(map[string]any)
		pix := body["pix"].(map[string]any)
		if payment["id"] != "pay-1" || payment["amount"] != "99.90" || pix["provider"] != "fallback" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_CreateCharge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIPaymentUseCase(ctrl)
	h := NewPaymentHandler(uc)

	r := gin.New()
	r.POST("/v1/payments/charge", asUser("admin-1", "admin"), h.CreateCharge)

	uc.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, cmd usecase.CreatePaymentCommand) (usecase.PaymentResult, error) {
			if cmd.UserID != "" || cmd.ItemID != "" {
				return usecase.PaymentResult{}, fmt.Errorf("unexpected ids %+v", cmd)
			}
			if cmd.Amount.StringFixed(2) != "15.00" || cmd.Payer.Email != "ana@example.com" || cmd.Description != "Consulting" {
				return usecase.PaymentResult{}, fmt.Errorf("unexpected command %+v", cmd)
			}
			p := entities.Payment{ID: "pay-9", Amount: cmd.Amount, Status: entities.PaymentStatusPending, Customer: cmd.Payer}
			return usecase.PaymentResult{Payment: p}, nil
		})

	w := doJSON(r, http.MethodPost, "/v1/payments/charge", `{"amount":15,"description":" Consulting ","customerName":"Ana","customerEmail":"ana@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestPaymentHandler_CreatePixLink(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("checkout for the named user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/create-pix-link", asUser("admin-1", "admin"), h.CreatePixLink)

		p := pendingPayment("pay-3", "user-7")
		uc.EXPECT().CreatePayment(gomock.Any(), usecase.CreatePaymentCommand{UserID: "user-7", ItemID: "item-1"}).
			Return(usecase.PaymentResult{Payment: p, Pix: p.Pix()}, nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/create-pix-link", `{"userId":"user-7","itemId":"item-1"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
		payment, _ := decodeBody(t, w)["payment"].(map[string]any)
		if payment["userId"] != "user-7" || payment["id"] != "pay-3" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("missing user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/create-pix-link", asUser("admin-1", "admin"), h.CreatePixLink)

		w := doJSON(r, http.MethodPost, "/v1/payments/create-pix-link", `{"itemId":"item-1"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("duplicate points at the live payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/create-pix-link", asUser("admin-1", "admin"), h.CreatePixLink)

		uc.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return(usecase.PaymentResult{}, &usecase.DuplicatePendingPaymentError{PaymentID: "pay-0"})

		w := doJSON(r, http.MethodPost, "/v1/payments/create-pix-link", `{"userId":"user-7","itemId":"item-1"}`)
		if w.Code != http.StatusConflict || decodeBody(t, w)["paymentId"] != "pay-0" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		caller string
		role   string
		want   int
	}{
		{"owner", "user-1", "user", http.StatusOK},
		{"admin", "admin-1", "admin", http.StatusOK},
		{"someone else", "user-2", "user", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			uc := mocks.NewMockIPaymentUseCase(ctrl)
			h := NewPaymentHandler(uc)

			r := gin.New()
			r.GET("/v1/payments/:paymentId", asUser(tc.caller, tc.role), h.GetPayment)

			uc.EXPECT().GetStatus(gomock.Any(), "pay-1").Return(usecase.PaymentStatusView{Payment: pendingPayment("pay-1", "user-1"), IsValid: true}, nil)

			w := doJSON(r, http.MethodGet, "/v1/payments/pay-1", "")
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			if tc.want == http.StatusOK && decodeBody(t, w)["isValid"] != true {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.GET("/v1/payments/:paymentId", asUser("user-1", "user"), h.GetPayment)

		uc.EXPECT().GetStatus(gomock.Any(), "missing").Return(usecase.PaymentStatusView{}, usecase.ErrPaymentNotFound)

		w := doJSON(r, http.MethodGet, "/v1/payments/missing", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_GetQRCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIPaymentUseCase(ctrl)
	h := NewPaymentHandler(uc)

	r := gin.New()
	r.GET("/v1/payments/:paymentId/qrcode", asUser("user-1", "user"), h.GetQRCode)

	uc.EXPECT().GetStatus(gomock.Any(), "pay-1").Return(usecase.PaymentStatusView{Payment: pendingPayment("pay-1", "user-1")}, nil)

	w := doJSON(r, http.MethodGet, "/v1/payments/pay-1/qrcode", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %q", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png signature")
	}
}

func TestPaymentHandler_CancelPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("owner cancels", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/:paymentId/cancel", asUser("user-1", "user"), h.CancelPayment)

		p := pendingPayment("pay-1", "user-1")
		cancelled := p
		cancelled.Status = entities.PaymentStatusCancelled
		uc.EXPECT().GetStatus(gomock.Any(), "pay-1").Return(usecase.PaymentStatusView{Payment: p}, nil)
		uc.EXPECT().MarkCancelled(gomock.Any(), "pay-1").Return(cancelled, nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/pay-1/cancel", "")
		if w.Code != http.StatusOK || decodeBody(t, w)["status"] != "cancelled" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("approved cannot be cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/:paymentId/cancel", asUser("user-1", "user"), h.CancelPayment)

		uc.EXPECT().GetStatus(gomock.Any(), "pay-1").Return(usecase.PaymentStatusView{Payment: pendingPayment("pay-1", "user-1")}, nil)
		uc.EXPECT().MarkCancelled(gomock.Any(), "pay-1").Return(entities.Payment{}, fmt.Errorf("%w: approved -> cancelled", usecase.ErrInvalidTransition))

		w := doJSON(r, http.MethodPost, "/v1/payments/pay-1/cancel", "")
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["code"] != "INVALID_TRANSITION" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})
}

func TestPaymentHandler_Webhook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("sacapay body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/webhook", h.Webhook)

		approved := pendingPayment("pay-1", "user-1")
		approved.Status = entities.PaymentStatusApproved
		uc.EXPECT().HandleProviderNotification(gomock.Any(), usecase.ProviderNotification{ProviderRef: "tx-1", Status: "paid"}).Return(approved, nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/webhook", `{"transaction_id":"tx-1","status":"paid"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["paymentId"] != "pay-1" || body["status"] != "approved" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("mercado pago body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/webhook", h.Webhook)

		uc.EXPECT().HandleProviderNotification(gomock.Any(), usecase.ProviderNotification{ProviderRef: "123"}).Return(pendingPayment("pay-1", "user-1"), nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/webhook", `{"type":"payment","data":{"id":123}}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("other topic is acknowledged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/webhook", h.Webhook)

		w := doJSON(r, http.MethodPost, "/v1/payments/webhook", `{"type":"merchant_order","data":{"id":"9"}}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("stale notification is acknowledged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/webhook", h.Webhook)

		uc.EXPECT().HandleProviderNotification(gomock.Any(), gomock.Any()).Return(entities.Payment{}, fmt.Errorf("%w: failed -> approved", usecase.ErrInvalidTransition))

		w := doJSON(r, http.MethodPost, "/v1/payments/webhook", `{"transaction_id":"tx-1","status":"paid"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/webhook", h.Webhook)

		uc.EXPECT().HandleProviderNotification(gomock.Any(), gomock.Any()).Return(entities.Payment{}, usecase.ErrPaymentNotFound)

		w := doJSON(r, http.MethodPost, "/v1/payments/webhook", `{"transaction_id":"nope","status":"paid"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/webhook", h.Webhook)

		w := doJSON(r, http.MethodPost, "/v1/payments/webhook", `{`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_AdminRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("manual payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/manual", asUser("admin-1", "admin"), h.CreateManualPayment)

		paidAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		uc.EXPECT().CreateManualPayment(gomock.Any(), "user-1", "item-1").Return(entities.Payment{
			ID: "pay-m", UserID: "user-1", ItemID: "item-1", Amount: decimal.NewFromInt(50),
			Status: entities.PaymentStatusApproved, Method: entities.PaymentMethodManual, PaidAt: &paidAt,
		}, nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/manual", `{"userId":"user-1","itemId":"item-1"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if decodeBody(t, w)["method"] != "manual" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("approve grant failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/manual/:paymentId", asUser("admin-1", "admin"), h.ApprovePayment)

		uc.EXPECT().MarkApproved(gomock.Any(), "pay-1", gomock.Any()).
			Return(entities.Payment{}, fmt.Errorf("%w: payment_id=pay-1: %v", usecase.ErrEntitlementGrantFailure, errors.New("throttled")))

		w := doJSON(r, http.MethodPost, "/v1/payments/manual/pay-1", "")
		if w.Code != http.StatusInternalServerError || decodeBody(t, w)["code"] != "ENTITLEMENT_GRANT_FAILURE" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("reject", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments/reject/:paymentId", asUser("admin-1", "admin"), h.RejectPayment)

		failed := pendingPayment("pay-1", "user-1")
		failed.Status = entities.PaymentStatusFailed
		uc.EXPECT().MarkFailed(gomock.Any(), "pay-1").Return(failed, nil)

		w := doJSON(r, http.MethodPost, "/v1/payments/reject/pay-1", "")
		if w.Code != http.StatusOK || decodeBody(t, w)["status"] != "failed" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})
}

func TestMapPaymentError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"invalid input", usecase.ErrInvalidAmount, "INVALID_INPUT", http.StatusBadRequest},
		{"already owned", usecase.ErrItemAlreadyOwned, "INVALID_INPUT", http.StatusBadRequest},
		{"transition", usecase.ErrInvalidTransition, "INVALID_TRANSITION", http.StatusBadRequest},
		{"item not found", usecase.ErrItemNotFound, "NOT_FOUND", http.StatusNotFound},
		{"user not found", usecase.ErrUserNotFound, "NOT_FOUND", http.StatusNotFound},
		{"duplicate", &usecase.DuplicatePendingPaymentError{}, "DUPLICATE_PENDING_PAYMENT", http.StatusConflict},
		{"grant failure", fmt.Errorf("%w: x", usecase.ErrEntitlementGrantFailure), "ENTITLEMENT_GRANT_FAILURE", http.StatusInternalServerError},
		{"provider", interfaces.ErrProviderUnavailable, "PROVIDER_UNAVAILABLE", http.StatusBadGateway},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr := mapPaymentError(tc.err)
			if appErr.Code != tc.code || appErr.HTTPStatus != tc.status {
				t.Fatalf("expected %s/%d, got %s/%d", tc.code, tc.status, appErr.Code, appErr.HTTPStatus)
			}
		})
	}

	if id := mapPaymentError(&usecase.DuplicatePendingPaymentError{}).PaymentID; id != "" {
		t.Fatalf("expected no paymentId without an id, got %q", id)
	}
}

package routes

import (
	"loja_pix/internal/adapter/http/handlers"
	"loja_pix/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

const (
	PathPayments = "/payments"
)

type routeDeps struct {
	payments     *handlers.PaymentHandler
	entitlements *handlers.EntitlementHandler
	auth         gin.HandlerFunc
	webhookLimit gin.HandlerFunc
}

func addPaymentRoutes(rg *gin.RouterGroup, d routeDeps) {
	payments := rg.Group(PathPayments)

	// Provider callbacks carry no session.
	payments.POST("/webhook", d.webhookLimit, d.payments.Webhook)

	user := payments.Group("", d.auth)
	{
		user.POST("/create", d.payments.CreatePayment)
		user.GET("/:paymentId", d.payments.GetPayment)
		user.GET("/:paymentId/qrcode", d.payments.GetQRCode)
		user.POST("/:paymentId/cancel", d.payments.CancelPayment)
	}

	admin := payments.Group("", d.auth, middleware.AdminOnly())
	{
		admin.POST("/charge", d.payments.CreateCharge)
		admin.POST("/create-pix-link", d.payments.CreatePixLink)
		admin.POST("/manual", d.payments.CreateManualPayment)
		admin.POST("/manual/:paymentId", d.payments.ApprovePayment)
		admin.POST("/approve/:paymentId", d.payments.ApprovePayment)
		admin.POST("/reject/:paymentId", d.payments.RejectPayment)
		admin.POST("/entitlements", d.entitlements.GrantItem)
	}
}

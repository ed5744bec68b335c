package handlers

import (
	"log"
	"net/http"

	request "loja_pix/internal/adapter/http/dto/request"
	response "loja_pix/internal/adapter/http/dto/response"
	"loja_pix/internal/adapter/http/middleware"
	"loja_pix/internal/usecase"

	"github.com/gin-gonic/gin"
)

type EntitlementHandler struct {
	usecase usecase.IEntitlementUseCase
}

func NewEntitlementHandler(uc usecase.IEntitlementUseCase) *EntitlementHandler {
	return &EntitlementHandler{usecase: uc}
}

// GrantItem godoc
// @Summary      Grant an item without a payment
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      request.GrantRequest  true  "Grant"
// @Success      200   {object}  response.GrantResponse
// @Failure      404   {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /payments/entitlements [post]
func (h *EntitlementHandler) GrantItem(c *gin.Context) {
	var payload request.GrantRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	log.Printf("[entitlement][handler] grant start admin_id=%s user_id=%s item_id=%s", middleware.CurrentSession(c).UserID, payload.UserID, payload.ItemID)

	granted, err := h.usecase.GrantItem(c.Request.Context(), payload.UserID, payload.ItemID)
	if err != nil {
		log.Printf("[entitlement][handler] grant failed user_id=%s item_id=%s err=%v", payload.UserID, payload.ItemID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.GrantResponse{UserID: payload.UserID, ItemID: payload.ItemID, Granted: granted})
}

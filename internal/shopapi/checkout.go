package shopapi

import (
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/nexshop/nexshop/internal/gateway"
	"github.com/nexshop/nexshop/internal/order"
	"github.com/nexshop/nexshop/internal/webserver"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type checkoutPayload struct {
	CustomerInfo    domain.CustomerInfo    `json:"customer_info"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

type checkoutView struct {
	Order       *domain.Order        `json:"order"`
	Payment     *gateway.Receipt     `json:"payment"`
	ShippingETA *gateway.ShippingETA `json:"shipping_eta,omitempty"`
	Subtotal    float64              `json:"subtotal"`
	ShippingFee float64              `json:"shipping_fee"`
	Tax         float64              `json:"tax"`
}

func registerCheckoutRoutes() {
	webserver.ApiPOST("/api/shop/checkout", checkout)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// checkout charges the payment gateway, places the order and clears
// the session cart. Shipping fee and tax are layered on here, on top
// of the cart's own subtotal.
func checkout(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout", err.Error())
	}
	payload.PaymentMethod = strings.TrimSpace(payload.PaymentMethod)
	if payload.CustomerInfo.Email == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Customer email is required", nil)
	}

	appCtx := GetApp(c)
	userCart := appCtx.Carts().Cart(sid)
	if userCart.Len() == 0 {
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty, nothing to checkout", nil)
	}

	subtotal := round2(userCart.Total())
	shippingFee := appCtx.GetSettingsFloat64Value("checkout", "shipping_fee")
	tax := round2(subtotal * appCtx.GetSettingsFloat64Value("checkout", "tax_rate"))
	total := round2(subtotal + shippingFee + tax)

	ctx := c.Request().Context()
	receipt, err := appCtx.Payments().Charge(ctx, gateway.ChargeRequest{
		Amount:        total,
		OrderRef:      sid,
		Method:        payload.PaymentMethod,
		CustomerEmail: payload.CustomerInfo.Email,
	})
	if errors.Is(err, gateway.ErrUnsupportedMethod) {
		return fail(c, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "Unsupported payment method", payload.PaymentMethod)
	}
	if err != nil {
		return fail(c, http.StatusPaymentRequired, "PAYMENT_FAILED", "Payment processing failed", err.Error())
	}

	o, err := appCtx.Orders().Create(ctx,
		userCart.OrderItems(),
		payload.CustomerInfo,
		payload.ShippingAddress,
		payload.PaymentMethod,
		receipt.TransactionID,
		total,
	)
	if errors.Is(err, order.ErrEmptyOrder) || errors.Is(err, order.ErrInvalidTotal) {
		return fail(c, http.StatusBadRequest, "INVALID_ORDER", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to place order", err.Error())
	}

	// only a successful placement clears the cart
	userCart.Clear()

	// best-effort; the dispatcher logs its own estimate as well
	eta, etaErr := appCtx.Shipping().Estimate(ctx, payload.ShippingAddress)
	if etaErr != nil {
		zap.L().Warn("inline shipping estimate failed", zap.Error(etaErr))
		eta = nil
	}

	return ok(c, checkoutView{
		Order:       o,
		Payment:     receipt,
		ShippingETA: eta,
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Tax:         tax,
	})
}

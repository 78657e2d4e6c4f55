// Package gateway holds the pluggable external-effect capabilities:
// payment, shipping estimation and customer mail. Everything here is a
// simulated provider; swapping in a real integration only means
// registering another implementation, the order lifecycle never
// branches on provider.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedMethod = errors.New("gateway: unsupported payment method")
	ErrInvalidAmount     = errors.New("gateway: charge amount must be >= 0")
)

type ChargeRequest struct {
	Amount        float64
	OrderRef      string
	Method        string
	CustomerEmail string
}

type Receipt struct {
	TransactionID string `json:"transaction_id"`
	Method        string `json:"method"`
}

// PaymentGateway charges a customer. One implementation per provider.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Receipt, error)
}

// mockGateway simulates a provider round trip: a latency pause and a
// provider-prefixed transaction id.
type mockGateway struct {
	method  string
	prefix  string
	latency time.Duration
	now     func() time.Time
}

func (g *mockGateway) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if req.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	receipt := &Receipt{
		TransactionID: fmt.Sprintf("%s%d", g.prefix, g.now().UnixMilli()),
		Method:        g.method,
	}
	zap.L().Debug("mock payment processed",
		zap.String("method", g.method),
		zap.String("order_ref", req.OrderRef),
		zap.Float64("amount", req.Amount),
		zap.String("transaction_id", receipt.TransactionID))
	return receipt, nil
}

// PaymentRegistry routes a charge to the gateway registered for its
// method tag.
type PaymentRegistry struct {
	gateways map[string]PaymentGateway
}

func NewPaymentRegistry() *PaymentRegistry {
	return &PaymentRegistry{gateways: make(map[string]PaymentGateway)}
}

func (r *PaymentRegistry) Register(method string, g PaymentGateway) {
	r.gateways[method] = g
}

func (r *PaymentRegistry) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	g, ok := r.gateways[req.Method]
	if !ok {
		return nil, errors.Wrap(ErrUnsupportedMethod, req.Method)
	}
	return g.Charge(ctx, req)
}

// NewMockPaymentRegistry wires the four simulated providers the
// storefront offers at checkout.
func NewMockPaymentRegistry(latency time.Duration) *PaymentRegistry {
	r := NewPaymentRegistry()
	for method, prefix := range map[string]string{
		"razorpay": "rzp_",
		"stripe":   "stripe_",
		"paypal":   "pp_",
		"cod":      "COD_",
	} {
		r.Register(method, &mockGateway{
			method:  method,
			prefix:  prefix,
			latency: latency,
			now:     time.Now,
		})
	}
	return r
}

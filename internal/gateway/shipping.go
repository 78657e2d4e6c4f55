package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/nexshop/nexshop/internal/domain"
	"go.uber.org/zap"
)

type ShippingETA struct {
	EstimatedDays int       `json:"estimated_days"`
	EstimatedDate time.Time `json:"estimated_date"`
	Partner       string    `json:"partner"`
}

type ShippingEstimator interface {
	Estimate(ctx context.Context, address domain.ShippingAddress) (*ShippingETA, error)
}

// MockShiprocket fakes a carrier quote: 3 to 7 business days, no real
// API call.
type MockShiprocket struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewMockShiprocket() *MockShiprocket {
	return &MockShiprocket{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

func (m *MockShiprocket) Estimate(ctx context.Context, address domain.ShippingAddress) (*ShippingETA, error) {
	m.mu.Lock()
	days := 3 + m.rnd.Intn(5)
	m.mu.Unlock()

	eta := &ShippingETA{
		EstimatedDays: days,
		EstimatedDate: m.now().AddDate(0, 0, days),
		Partner:       "Shiprocket",
	}
	zap.L().Debug("mock shipping estimate",
		zap.String("pincode", address.Pincode),
		zap.Int("estimated_days", days))
	return eta, nil
}

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/nexshop/nexshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateRange(t *testing.T) {
	m := NewMockShiprocket()
	address := domain.ShippingAddress{City: "Bengaluru", Pincode: "560001"}

	for i := 0; i < 100; i++ {
		eta, err := m.Estimate(context.Background(), address)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, eta.EstimatedDays, 3)
		assert.LessOrEqual(t, eta.EstimatedDays, 7)
		assert.Equal(t, "Shiprocket", eta.Partner)
	}
}

func TestEstimateDateMatchesDays(t *testing.T) {
	fixed := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	m := NewMockShiprocket()
	m.now = func() time.Time { return fixed }

	eta, err := m.Estimate(context.Background(), domain.ShippingAddress{Pincode: "110001"})
	require.NoError(t, err)
	assert.Equal(t, fixed.AddDate(0, 0, eta.EstimatedDays), eta.EstimatedDate)
}

package docstore

import (
	"testing"
	"time"

	"github.com/nexshop/nexshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecordRoundTrip(t *testing.T) {
	was := 3999.0
	now := time.Now().Truncate(time.Millisecond)
	in := domain.Product{
		ID:            1832481183501123584,
		Name:          "Wireless Headphones",
		Description:   "Noise cancelling, 40h battery",
		Price:         2999,
		OriginalPrice: &was,
		Category:      "electronics",
		Stock:         50,
		OnSale:        true,
		ImageURL:      "/public/products/headphones.jpg",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	rec, err := ToRecord(&in)
	require.NoError(t, err)
	// snowflake ids are above 2^53 and must not pass through float64
	assert.Equal(t, "1832481183501123584", rec["id"])
	assert.Equal(t, in.ID, RecordID(rec))

	var out domain.Product
	require.NoError(t, DecodeRecord(rec, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Price, out.Price)
	require.NotNil(t, out.OriginalPrice)
	assert.Equal(t, was, *out.OriginalPrice)
	assert.Equal(t, in.Stock, out.Stock)
	assert.True(t, out.OnSale)
	assert.True(t, out.CreatedAt.Equal(in.CreatedAt))
}

func TestOrderRecordRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	in := domain.Order{
		ID: 7,
		Items: domain.OrderItems{
			{ProductID: 3, Name: "Smart Watch", Price: 8999, Quantity: 1},
			{ProductID: 2, Name: "Cotton T-Shirt", Price: 599, Quantity: 2},
		},
		Total:  10197,
		Status: domain.OrderStatusPending,
		CustomerInfo: domain.CustomerInfo{
			FirstName: "Asha", LastName: "Rao",
			Email: "asha@example.com", Phone: "99999",
		},
		ShippingAddress: domain.ShippingAddress{
			Address: "1 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001",
		},
		PaymentMethod: "razorpay",
		TransactionID: "rzp_1737000000000",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	rec, err := ToRecord(&in)
	require.NoError(t, err)

	var out domain.Order
	require.NoError(t, DecodeRecord(rec, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Items, out.Items)
	assert.Equal(t, in.Total, out.Total)
	assert.Equal(t, domain.OrderStatusPending, out.Status)
	assert.Equal(t, in.CustomerInfo, out.CustomerInfo)
	assert.Equal(t, in.ShippingAddress, out.ShippingAddress)
	assert.True(t, out.UpdatedAt.Equal(in.UpdatedAt))
}

func TestDecodeRecordWeakTypes(t *testing.T) {
	rec := Record{
		"id":    "42",
		"name":  "Plant Pot Set",
		"price": "1299",
		"stock": 12.0,
	}
	var p domain.Product
	require.NoError(t, DecodeRecord(rec, &p))
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, 1299.0, p.Price)
	assert.Equal(t, 12, p.Stock)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, int64(5), RecordID(Record{"id": "5"}))
	assert.Equal(t, int64(5), RecordID(Record{"id": 5.0}))
	assert.Zero(t, RecordID(Record{}))
}

package order

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	m      sync.Mutex
	nextID int64
	data   map[string]map[int64]docstore.Record
	err    error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]map[int64]docstore.Record{}}
}

func (s *mockStore) collection(name string) map[int64]docstore.Record {
	if s.data[name] == nil {
		s.data[name] = map[int64]docstore.Record{}
	}
	return s.data[name]
}

func (s *mockStore) List(_ context.Context, collection string, q docstore.Query) ([]docstore.Record, int64, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	var out []docstore.Record
	for _, rec := range s.collection(collection) {
		match := true
		for field, want := range q.Eq {
			if rec[field] != want {
				match = false
				break
			}
		}
		if match {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (s *mockStore) Get(_ context.Context, collection string, id int64) (docstore.Record, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.collection(collection)[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return rec, nil
}

func (s *mockStore) Create(_ context.Context, collection string, rec docstore.Record) (int64, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	stored := docstore.Record{}
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = s.nextID
	s.collection(collection)[s.nextID] = stored
	return s.nextID, nil
}

func (s *mockStore) Update(_ context.Context, collection string, id int64, partial docstore.Record) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	rec, ok := s.collection(collection)[id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range partial {
		if k != "id" {
			rec[k] = v
		}
	}
	return nil
}

func (s *mockStore) Delete(_ context.Context, collection string, id int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	if _, ok := s.collection(collection)[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.collection(collection), id)
	return nil
}

func (s *mockStore) Close() error { return nil }

func testItems() []domain.OrderItem {
	return []domain.OrderItem{
		{ProductID: 1, Name: "Wireless Headphones", Price: 100, Quantity: 2},
	}
}

func testCustomer() domain.CustomerInfo {
	return domain.CustomerInfo{FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "99999"}
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{Address: "1 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001"}
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	svc := NewService(newMockStore(), nil)

	_, err := svc.Create(context.Background(), nil, testCustomer(), testAddress(), "cod", "", 0)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateRejectsNegativeTotal(t *testing.T) {
	svc := NewService(newMockStore(), nil)

	_, err := svc.Create(context.Background(), testItems(), testCustomer(), testAddress(), "cod", "", -1)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestCreateAssignsIDAndPendingStatus(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil)

	// total includes checkout-stage shipping and tax on top of 200
	o, err := svc.Create(context.Background(), testItems(), testCustomer(), testAddress(), "razorpay", "rzp_1", 335)
	require.NoError(t, err)

	assert.Equal(t, int64(1), o.ID)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, 335.0, o.Total)
	assert.Equal(t, "rzp_1", o.TransactionID)
	assert.True(t, o.CreatedAt.Equal(o.UpdatedAt), "created and updated must be the same instant")

	stored, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Wireless Headphones", stored.Items[0].Name)
}

func TestCreatePropagatesStoreFailure(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection refused")
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), testItems(), testCustomer(), testAddress(), "cod", "", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	// no partial order left behind
	store.err = nil
	result, err := svc.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
}

func TestCreatePublishesEvent(t *testing.T) {
	store := newMockStore()
	bus := EventBus.New()
	var published []domain.Order
	require.NoError(t, bus.Subscribe(TopicOrderCreated, func(o domain.Order) {
		published = append(published, o)
	}))
	svc := NewService(store, bus)

	o, err := svc.Create(context.Background(), testItems(), testCustomer(), testAddress(), "cod", "", 10)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, o.ID, published[0].ID)
}

func TestTransitionRejectsUndefinedStatus(t *testing.T) {
	svc := NewService(newMockStore(), nil)

	_, err := svc.Transition(context.Background(), 1, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc := NewService(newMockStore(), nil)

	_, err := svc.Transition(context.Background(), 404, domain.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionIsUnrestricted(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, testItems(), testCustomer(), testAddress(), "cod", "", 200)
	require.NoError(t, err)

	// forward, then backward: both must succeed
	_, err = svc.Transition(ctx, created.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	o, err := svc.Transition(ctx, created.ID, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, o.Status)

	// delivered and cancelled are not terminal either
	_, err = svc.Transition(ctx, created.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, created.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	o, err = svc.Transition(ctx, created.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, o.Status)
}

func TestTransitionTouchesOnlyStatusAndUpdatedAt(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, testItems(), testCustomer(), testAddress(), "razorpay", "rzp_9", 200)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	after, err := svc.Transition(ctx, created.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	assert.Equal(t, created.Items, after.Items)
	assert.Equal(t, created.Total, after.Total)
	assert.Equal(t, created.CustomerInfo, after.CustomerInfo)
	assert.Equal(t, created.ShippingAddress, after.ShippingAddress)
	assert.Equal(t, created.PaymentMethod, after.PaymentMethod)
	assert.Equal(t, created.TransactionID, after.TransactionID)
	assert.True(t, after.UpdatedAt.After(created.UpdatedAt))
}

func TestTransitionPublishesStatusChange(t *testing.T) {
	store := newMockStore()
	bus := EventBus.New()
	var changes []StatusChange
	require.NoError(t, bus.Subscribe(TopicOrderStatusChanged, func(ch StatusChange) {
		changes = append(changes, ch)
	}))
	svc := NewService(store, bus)
	ctx := context.Background()

	created, err := svc.Create(ctx, testItems(), testCustomer(), testAddress(), "cod", "", 10)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, created.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)

	require.Len(t, changes, 1)
	assert.Equal(t, domain.OrderStatusPending, changes[0].From)
	assert.Equal(t, domain.OrderStatusProcessing, changes[0].To)
}

func TestListDegradesOnUpstreamFailure(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("store down")
	svc := NewService(store, nil)

	result, err := svc.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Orders)
	assert.Zero(t, result.Total)
}

func TestExportCSV(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, testItems(), testCustomer(), testAddress(), "cod", "COD_1", 335)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "customer_email")
	assert.Contains(t, lines[1], "asha@example.com")
	assert.Contains(t, lines[1], "pending")
	assert.Contains(t, lines[1], "335")
}

func TestExportCSVFailsOnUpstreamError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("store down")
	svc := NewService(store, nil)

	var buf bytes.Buffer
	assert.Error(t, svc.ExportCSV(context.Background(), &buf))
}

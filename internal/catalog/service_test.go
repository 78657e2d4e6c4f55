package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	m      sync.Mutex
	nextID int64
	data   map[int64]docstore.Record
	err    error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[int64]docstore.Record{}}
}

func (s *mockStore) List(_ context.Context, _ string, q docstore.Query) ([]docstore.Record, int64, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]docstore.Record, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["id"].(int64) < out[j]["id"].(int64)
	})
	total := int64(len(out))
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			out = nil
		} else {
			out = out[q.Offset:]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (s *mockStore) Get(_ context.Context, _ string, id int64) (docstore.Record, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.data[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return rec, nil
}

func (s *mockStore) Create(_ context.Context, _ string, rec docstore.Record) (int64, error) {
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
	s.data[s.nextID] = stored
	return s.nextID, nil
}

func (s *mockStore) Update(_ context.Context, _ string, id int64, partial docstore.Record) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	rec, ok := s.data[id]
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

func (s *mockStore) Delete(_ context.Context, _ string, id int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.data[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *mockStore) Close() error { return nil }

type mockBlobs struct {
	m        sync.Mutex
	uploaded []string
	err      error
}

func (b *mockBlobs) Upload(_ context.Context, _ []byte, folder, filename string) (string, error) {
	b.m.Lock()
	defer b.m.Unlock()
	if b.err != nil {
		return "", b.err
	}
	url := "/public/" + folder + "/" + filename
	b.uploaded = append(b.uploaded, url)
	return url, nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockStore(), &mockBlobs{})
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Product{Name: "   ", Price: 10})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(ctx, domain.Product{Name: "Smart Watch", Price: -1})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(ctx, domain.Product{Name: "Smart Watch", Price: 8999, Stock: -5})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newMockStore(), &mockBlobs{})
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Product{Name: "  Smart Watch ", Price: 8999, Stock: 10})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Smart Watch", created.Name, "name is trimmed")
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 8999.0, got.Price)
}

func TestGetUnknownProduct(t *testing.T) {
	svc := NewService(newMockStore(), &mockBlobs{})

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockBlobs{})
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Product{
		Name: "Plant Pot Set", Price: 1299, Stock: 5,
		ImageURL: "/public/products/pots.jpg",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.Product{Name: "Plant Pot Set", Price: 999, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, 999.0, updated.Price)
	assert.Equal(t, "/public/products/pots.jpg", updated.ImageURL, "empty image url leaves the old one")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(newMockStore(), &mockBlobs{})

	_, err := svc.Update(context.Background(), 404, domain.Product{Name: "x", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockBlobs{})
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Product{Name: "Cotton T-Shirt", Price: 599})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestListDegradesToSampleCatalog(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("store down")
	svc := NewService(store, &mockBlobs{})

	result, err := svc.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, int64(len(SampleProducts())), result.Total)
	require.NotEmpty(t, result.Products)
	assert.Equal(t, "Wireless Headphones", result.Products[0].Name)
}

func TestListHealthyIsNotDegraded(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockBlobs{})
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Product{Name: "Smart Watch", Price: 8999})
	require.NoError(t, err)

	result, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, int64(1), result.Total)
}

func TestListAllPagesThroughLargeCatalog(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockBlobs{})
	ctx := context.Background()

	// more rows than one 500-item export page
	const count = 1201
	for i := 0; i < count; i++ {
		_, err := svc.Create(ctx, domain.Product{Name: fmt.Sprintf("p-%04d", i), Price: 1})
		require.NoError(t, err)
	}

	products, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, count)

	seen := make(map[int64]bool, count)
	for _, p := range products {
		seen[p.ID] = true
	}
	assert.Len(t, seen, count, "no row exported twice")
}

func TestListAllRefusesFallbackCatalog(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("store down")
	svc := NewService(store, &mockBlobs{})

	_, err := svc.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAttachImage(t *testing.T) {
	store := newMockStore()
	blobs := &mockBlobs{}
	svc := NewService(store, blobs)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Product{Name: "Wireless Headphones", Price: 2999})
	require.NoError(t, err)

	url, err := svc.AttachImage(ctx, created.ID, []byte("jpeg bytes"), "headphones.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/public/products/headphones.jpg", url)
	require.Len(t, blobs.uploaded, 1)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.ImageURL)
}

func TestAttachImageUnknownProduct(t *testing.T) {
	blobs := &mockBlobs{}
	svc := NewService(newMockStore(), blobs)

	_, err := svc.AttachImage(context.Background(), 404, []byte("x"), "x.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, blobs.uploaded, "no upload for a missing product")
}

func TestUploadFailureLeavesProductUntouched(t *testing.T) {
	store := newMockStore()
	blobs := &mockBlobs{err: errors.New("disk full")}
	svc := NewService(store, blobs)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Product{Name: "Smart Watch", Price: 8999})
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, created.ID, []byte("x"), "watch.jpg")
	require.Error(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ImageURL)
}

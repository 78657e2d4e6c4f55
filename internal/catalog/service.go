package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/nexshop/nexshop/internal/blobstore"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const Collection = "products"

// allowed sort columns, everything else falls back to name
var sortFields = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type ListOptions struct {
	Page     int
	PageSize int
	Sort     string
	Desc     bool
	Search   string // case-insensitive substring on name
	Category string
}

// ListResult distinguishes "no products" from "store unavailable":
// Degraded is true when the items come from the fallback catalog.
type ListResult struct {
	Products []domain.Product
	Total    int64
	Degraded bool
}

// Service owns product reads and the admin-side catalog mutations.
type Service struct {
	store docstore.Store
	blobs blobstore.Store
	sfg   singleflight.Group // collapses concurrent Get calls per id
}

func NewService(store docstore.Store, blobs blobstore.Store) *Service {
	return &Service{store: store, blobs: blobs}
}

func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 || opts.PageSize > 500 {
		opts.PageSize = 20
	}
	sortCol, ok := sortFields[opts.Sort]
	if !ok {
		sortCol = "name"
	}

	q := docstore.Query{
		OrderBy: sortCol,
		Desc:    opts.Desc,
		Offset:  (opts.Page - 1) * opts.PageSize,
		Limit:   opts.PageSize,
	}
	if opts.Category != "" {
		q.Eq = map[string]interface{}{"category": opts.Category}
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		q.MatchField = "name"
		q.Match = search
	}

	records, total, err := s.store.List(ctx, Collection, q)
	if err != nil {
		// Browse keeps working on upstream failure; the flag tells the
		// caller the data is canned, not empty.
		zap.L().Error("product list degraded to sample catalog", zap.Error(err))
		fallback := SampleProducts()
		return &ListResult{Products: fallback, Total: int64(len(fallback)), Degraded: true}, nil
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		var p domain.Product
		if err := docstore.DecodeRecord(rec, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return &ListResult{Products: products, Total: total}, nil
}

// ListAll pages through the entire catalog, id-ordered. Export paths
// use it; unlike List it fails with ErrUnavailable instead of serving
// the fallback catalog.
func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	const pageSize = 500
	var out []domain.Product
	for page := 1; ; page++ {
		result, err := s.List(ctx, ListOptions{Page: page, PageSize: pageSize, Sort: "id"})
		if err != nil {
			return nil, err
		}
		if result.Degraded {
			return nil, ErrUnavailable
		}
		out = append(out, result.Products...)
		if len(result.Products) < pageSize || int64(len(out)) >= result.Total {
			return out, nil
		}
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		rec, err := s.store.Get(ctx, Collection, id)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		var p domain.Product
		if err := docstore.DecodeRecord(rec, &p); err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func validate(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" {
		return errors.Wrap(ErrInvalidProduct, "name is required")
	}
	if p.Price < 0 {
		return errors.Wrap(ErrInvalidProduct, "price must be >= 0")
	}
	if p.Stock < 0 {
		return errors.Wrap(ErrInvalidProduct, "stock must be >= 0")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validate(&p); err != nil {
		return nil, err
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	rec, err := docstore.ToRecord(&p)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, Collection, rec)
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	p.ID = id
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id int64, p domain.Product) (*domain.Product, error) {
	if err := validate(&p); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Name = p.Name
	current.Description = p.Description
	current.Price = p.Price
	current.OriginalPrice = p.OriginalPrice
	current.Category = p.Category
	current.Stock = p.Stock
	current.OnSale = p.OnSale
	if p.ImageURL != "" {
		current.ImageURL = p.ImageURL
	}
	current.UpdatedAt = time.Now()

	partial := docstore.Record{
		"name":           current.Name,
		"description":    current.Description,
		"price":          current.Price,
		"original_price": current.OriginalPrice,
		"category":       current.Category,
		"stock":          current.Stock,
		"on_sale":        current.OnSale,
		"image_url":      current.ImageURL,
		"updated_at":     current.UpdatedAt,
	}
	if err := s.store.Update(ctx, Collection, id, partial); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update product")
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, "delete product")
}

// AttachImage uploads the image bytes and patches the product's
// image_url. Upload happens first so a failed patch never leaves a
// product pointing at a missing blob.
func (s *Service) AttachImage(ctx context.Context, id int64, data []byte, filename string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	url, err := s.blobs.Upload(ctx, data, "products", filename)
	if err != nil {
		return "", errors.Wrap(err, "upload product image")
	}
	partial := docstore.Record{
		"image_url":  url,
		"updated_at": time.Now(),
	}
	if err := s.store.Update(ctx, Collection, id, partial); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "save product image url")
	}
	return url, nil
}

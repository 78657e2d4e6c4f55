package order

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const Collection = "orders"

// Event topics published after successful store writes. Subscribers are
// best-effort and must never fail the triggering operation.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
)

// StatusChange is the payload for TopicOrderStatusChanged.
type StatusChange struct {
	OrderID int64
	From    domain.OrderStatus
	To      domain.OrderStatus
}

type ListOptions struct {
	Page     int
	PageSize int
	Status   domain.OrderStatus // empty = all
}

// ListResult carries Degraded=true when the store was unreachable and
// the page is empty for that reason rather than for lack of orders.
type ListResult struct {
	Orders   []domain.Order
	Total    int64
	Degraded bool
}

// Service governs the order lifecycle: one creation path, one status
// transition path, reads. Items and total are never touched after
// creation.
type Service struct {
	store docstore.Store
	bus   EventBus.Bus
}

func NewService(store docstore.Store, bus EventBus.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// Create validates the snapshot inputs, persists the order in pending
// status with equal created/updated instants, and publishes
// TopicOrderCreated. The store write is a single logical unit: on error
// nothing is left behind and the error propagates untouched.
func (s *Service) Create(
	ctx context.Context,
	items []domain.OrderItem,
	customer domain.CustomerInfo,
	address domain.ShippingAddress,
	paymentMethod string,
	transactionID string,
	total float64,
) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if total < 0 {
		return nil, ErrInvalidTotal
	}

	now := time.Now()
	o := domain.Order{
		Items:           items,
		Total:           total,
		Status:          domain.OrderStatusPending,
		CustomerInfo:    customer,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		TransactionID:   transactionID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	rec, err := docstore.ToRecord(&o)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, Collection, rec)
	if err != nil {
		return nil, errors.Wrap(err, "persist order")
	}
	o.ID = id

	zap.L().Info("order created",
		zap.Int64("order_id", id),
		zap.Float64("total", total),
		zap.String("payment_method", paymentMethod))
	s.publish(TopicOrderCreated, o)
	return &o, nil
}

// Transition moves an order to any defined status. There is no
// forward-only rule: an administrator may send a delivered order back
// to pending. Only status and updated_at are written.
func (s *Service) Transition(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, errors.Wrapf(ErrInvalidStatus, "%q", status)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	partial := docstore.Record{
		"status":     string(status),
		"updated_at": now,
	}
	if err := s.store.Update(ctx, Collection, id, partial); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update order status")
	}

	from := current.Status
	current.Status = status
	current.UpdatedAt = now

	zap.L().Info("order status changed",
		zap.Int64("order_id", id),
		zap.String("from", from.String()),
		zap.String("to", status.String()))
	s.publish(TopicOrderStatusChanged, StatusChange{OrderID: id, From: from, To: status})
	return current, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	rec, err := s.store.Get(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	var o domain.Order
	if err := docstore.DecodeRecord(rec, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns orders newest first. Reads degrade to an empty flagged
// page on upstream failure; writes never degrade.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 || opts.PageSize > 500 {
		opts.PageSize = 20
	}

	q := docstore.Query{
		OrderBy: "created_at",
		Desc:    true,
		Offset:  (opts.Page - 1) * opts.PageSize,
		Limit:   opts.PageSize,
	}
	if opts.Status != "" {
		q.Eq = map[string]interface{}{"status": string(opts.Status)}
	}

	records, total, err := s.store.List(ctx, Collection, q)
	if err != nil {
		zap.L().Error("order list degraded to empty page", zap.Error(err))
		return &ListResult{Degraded: true}, nil
	}

	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		var o domain.Order
		if err := docstore.DecodeRecord(rec, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return &ListResult{Orders: orders, Total: total}, nil
}

func (s *Service) publish(topic string, payload interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, payload)
}

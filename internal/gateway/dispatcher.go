package gateway

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/nexshop/nexshop/internal/order"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const taskTimeout = 15 * time.Second

// Dispatcher fans order events out to the mock external effects on a
// worker pool. Every task is fire-and-forget: a full pool falls back to
// an inline goroutine and failures only produce log lines, so order
// creation is never blocked or rolled back by a notification.
type Dispatcher struct {
	pool     *ants.Pool
	mailer   Mailer
	shipping ShippingEstimator
}

func NewDispatcher(poolSize int, mailer Mailer, shipping ShippingEstimator) (*Dispatcher, error) {
	if poolSize < 1 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "init notify pool")
	}
	return &Dispatcher{pool: pool, mailer: mailer, shipping: shipping}, nil
}

func (d *Dispatcher) Subscribe(bus EventBus.Bus) error {
	if err := bus.Subscribe(order.TopicOrderCreated, d.onOrderCreated); err != nil {
		return errors.Wrap(err, "subscribe order.created")
	}
	if err := bus.Subscribe(order.TopicOrderStatusChanged, d.onStatusChanged); err != nil {
		return errors.Wrap(err, "subscribe order.status.changed")
	}
	return nil
}

func (d *Dispatcher) Release() {
	d.pool.Release()
}

func (d *Dispatcher) submit(task func()) {
	if err := d.pool.Submit(task); err != nil {
		zap.L().Warn("notify pool saturated, running task inline", zap.Error(err))
		go task()
	}
}

func (d *Dispatcher) onOrderCreated(o domain.Order) {
	d.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		if err := d.mailer.SendOrderConfirmation(ctx, o.CustomerInfo.Email, o.ID); err != nil {
			zap.L().Warn("order confirmation mail failed",
				zap.Int64("order_id", o.ID), zap.Error(err))
		}
	})
	d.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		eta, err := d.shipping.Estimate(ctx, o.ShippingAddress)
		if err != nil {
			zap.L().Warn("shipping estimate failed",
				zap.Int64("order_id", o.ID), zap.Error(err))
			return
		}
		zap.L().Info("shipping ETA calculated",
			zap.Int64("order_id", o.ID),
			zap.Int("estimated_days", eta.EstimatedDays),
			zap.String("partner", eta.Partner))
	})
}

func (d *Dispatcher) onStatusChanged(change order.StatusChange) {
	zap.L().Info("order status notification",
		zap.Int64("order_id", change.OrderID),
		zap.String("from", change.From.String()),
		zap.String("to", change.To.String()))
}

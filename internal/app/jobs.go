package app

import (
	"context"
	"time"

	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/nexshop/nexshop/internal/order"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 5m", func() {
		if err := a.configManager.Reload(); err != nil {
			zap.L().Warn("settings reload failed", zap.Error(err))
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedOrderSummaryTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedOrderSummaryTask logs a daily order census for the operators.
func (a *Application) SchedOrderSummaryTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, total, err := a.store.List(ctx, order.Collection, docstore.Query{Limit: 1})
	if err != nil {
		zap.L().Warn("order summary failed", zap.Error(err))
		return
	}
	_, pending, err := a.store.List(ctx, order.Collection, docstore.Query{
		Limit: 1,
		Eq:    map[string]interface{}{"status": string(domain.OrderStatusPending)},
	})
	if err != nil {
		zap.L().Warn("order summary failed", zap.Error(err))
		return
	}

	zap.L().Info("daily order summary",
		zap.Int64("orders_total", total),
		zap.Int64("orders_pending", pending))
}

// StartBackgroundJobs keeps the scheduler running until ctx is done.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	go func() {
		<-ctx.Done()
		if a.sched != nil {
			a.sched.Stop()
		}
	}()
}

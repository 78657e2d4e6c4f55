package app

import (
	"github.com/nexshop/nexshop/config"
	"github.com/nexshop/nexshop/internal/blobstore"
	"github.com/nexshop/nexshop/internal/cart"
	"github.com/nexshop/nexshop/internal/catalog"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/gateway"
	"github.com/nexshop/nexshop/internal/order"
	"github.com/robfig/cron/v3"
)

// StoreProvider provides document store access
type StoreProvider interface {
	Store() docstore.Store
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, name string) string
	GetSettingsInt64Value(category, name string) int64
	GetSettingsBoolValue(category, name string) bool
	GetSettingsFloat64Value(category, name string) float64
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// WebContext is what the HTTP handlers depend on. Handlers receive it
// through the request context instead of touching package globals.
type WebContext interface {
	ConfigProvider
	StoreProvider
	SettingsProvider

	Blobs() blobstore.Store
	Carts() *cart.Registry
	Catalog() *catalog.Service
	Orders() *order.Service
	Payments() *gateway.PaymentRegistry
	Shipping() gateway.ShippingEstimator
	ConfigMgr() *ConfigManager
}

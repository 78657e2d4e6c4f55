package app

import (
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/nexshop/nexshop/config"
	"github.com/nexshop/nexshop/internal/blobstore"
	"github.com/nexshop/nexshop/internal/cart"
	"github.com/nexshop/nexshop/internal/catalog"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/nexshop/nexshop/internal/gateway"
	"github.com/nexshop/nexshop/internal/order"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// paymentLatency is the simulated provider round trip of the mock
// gateways, matching the UX of a real checkout redirect.
const paymentLatency = 2 * time.Second

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB // nil when the bolt backend is active
	store         docstore.Store
	blobs         blobstore.Store
	configManager *ConfigManager
	sched         *cron.Cron
	bus           EventBus.Bus
	carts         *cart.Registry
	catalogSvc    *catalog.Service
	orderSvc      *order.Service
	payments      *gateway.PaymentRegistry
	shipping      gateway.ShippingEstimator
	mailer        gateway.Mailer
	dispatcher    *gateway.Dispatcher
}

// Ensure Application implements all interfaces
var (
	_ StoreProvider    = (*Application)(nil)
	_ ConfigProvider   = (*Application)(nil)
	_ SettingsProvider = (*Application)(nil)
	_ WebContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig        { return a.appConfig }
func (a *Application) Store() docstore.Store            { return a.store }
func (a *Application) Blobs() blobstore.Store           { return a.blobs }
func (a *Application) Carts() *cart.Registry            { return a.carts }
func (a *Application) Catalog() *catalog.Service        { return a.catalogSvc }
func (a *Application) Orders() *order.Service           { return a.orderSvc }
func (a *Application) Payments() *gateway.PaymentRegistry {
	return a.payments
}
func (a *Application) Shipping() gateway.ShippingEstimator {
	return a.shipping
}

// DB returns the gorm handle when the relational backend is active.
func (a *Application) DB() *gorm.DB { return a.gormDB }

// OverrideStore replaces the document store (used in tests).
func (a *Application) OverrideStore(store docstore.Store) {
	a.store = store
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager { return a.configManager }

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron { return a.sched }

func (a *Application) GetSettingsStringValue(category, name string) string {
	return a.configManager.GetString(category, name)
}

func (a *Application) GetSettingsInt64Value(category, name string) int64 {
	return a.configManager.GetInt64(category, name)
}

func (a *Application) GetSettingsBoolValue(category, name string) bool {
	return a.configManager.GetBool(category, name)
}

func (a *Application) GetSettingsFloat64Value(category, name string) float64 {
	return a.configManager.GetFloat64(category, name)
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)
	cfg.InitDirs()

	if err := a.initStore(cfg); err != nil {
		return err
	}
	a.blobs = blobstore.NewLocalStore(
		filepath.Join(cfg.System.Workdir, "public"), cfg.Web.PublicURL)

	a.configManager = NewConfigManager(a.store)
	a.checkSettings()
	a.checkSuper()
	a.checkProducts()

	a.bus = EventBus.New()
	a.carts = cart.NewRegistry()
	a.catalogSvc = catalog.NewService(a.store, a.blobs)
	a.orderSvc = order.NewService(a.store, a.bus)

	a.payments = gateway.NewMockPaymentRegistry(paymentLatency)
	a.shipping = gateway.NewMockShiprocket()
	if cfg.Mailer.Driver == "smtp" {
		a.mailer = gateway.NewSMTPMailer(a)
	} else {
		a.mailer = gateway.LogMailer{}
	}

	a.dispatcher, err = gateway.NewDispatcher(16, a.mailer, a.shipping)
	if err != nil {
		return err
	}
	if err := a.dispatcher.Subscribe(a.bus); err != nil {
		return err
	}

	a.initJob()
	return nil
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) initStore(cfg *config.AppConfig) error {
	switch cfg.Database.Type {
	case "bolt":
		path := filepath.Join(cfg.System.Workdir, "data", cfg.Database.BoltFile)
		store, err := docstore.NewBoltStore(path)
		if err != nil {
			return err
		}
		a.store = store
		zap.S().Infof("Document store ready, type: bolt, file: %s", path)
	case "", "postgres":
		db, err := getDatabase(cfg.Database)
		if err != nil {
			return err
		}
		a.gormDB = db
		if err := a.MigrateDB(cfg.Database.Debug); err != nil {
			zap.S().Errorf("database migration failed: %v", err)
		}
		store, err := docstore.NewGormStore(db)
		if err != nil {
			return err
		}
		a.store = store
		zap.S().Info("Document store ready, type: postgres")
	default:
		return errors.Errorf("unknown database type %q", cfg.Database.Type)
	}
	return nil
}

func (a *Application) MigrateDB(track bool) error {
	if a.gormDB == nil {
		return nil
	}
	if track {
		return a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...)
	}
	return a.gormDB.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	if a.gormDB != nil {
		_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	}
}

func (a *Application) InitDb() {
	a.DropAll()
	if err := a.MigrateDB(false); err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Release()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = zap.L().Sync()
}

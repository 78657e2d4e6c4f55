package app

import (
	"context"
	"time"

	"github.com/nexshop/nexshop/internal/catalog"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"go.uber.org/zap"
)

// settingSchema describes one default runtime setting.
type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var defaultSettings = []settingSchema{
	{Key: "store.name", Default: "NexShop", Description: "Storefront display name"},
	{Key: "store.currency", Default: "INR", Description: "Display currency code"},
	{Key: "checkout.tax_rate", Default: "0.18", Description: "Tax rate applied on the cart subtotal"},
	{Key: "checkout.shipping_fee", Default: "99", Description: "Flat shipping fee added at checkout"},
	{Key: "smtp.host", Default: "", Description: "SMTP relay host for confirmation mails"},
	{Key: "smtp.port", Default: "587", Description: "SMTP relay port"},
	{Key: "smtp.from", Default: "no-reply@nexshop.local", Description: "Confirmation mail sender"},
	{Key: "smtp.username", Default: "", Description: "SMTP username"},
	{Key: "smtp.password", Default: "", Description: "SMTP password"},
}

// checkSettings initializes missing settings with their defaults.
func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		category, name, ok := splitSettingKey(schema.Key)
		if !ok {
			zap.L().Warn("invalid setting key format", zap.String("key", schema.Key))
			continue
		}
		if a.configManager.GetString(category, name) != "" {
			continue
		}
		// GetString cannot tell "unset" from "set to empty"; check the
		// collection before seeding so cleared values survive restarts.
		if _, exists := a.configManager.Dump()[schema.Key]; exists {
			continue
		}
		if err := a.configManager.Set(category, name, schema.Default); err != nil {
			zap.L().Error("failed to initialize setting",
				zap.String("key", schema.Key), zap.Error(err))
			continue
		}
		zap.L().Info("initialized setting",
			zap.Int("sort", sortid),
			zap.String("key", schema.Key),
			zap.String("default", schema.Default))
	}
}

func splitSettingKey(key string) (category, name string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], i > 0 && i < len(key)-1
		}
	}
	return "", "", false
}

// checkSuper seeds the back-office operator record the external auth
// provider maps admins onto.
func (a *Application) checkSuper() {
	const superUsername = "admin"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, _, err := a.store.List(ctx, "sys_opr", docstore.Query{
		Eq: map[string]interface{}{"username": superUsername},
	})
	if err != nil {
		zap.L().Error("failed to query super operator", zap.Error(err))
		return
	}
	if len(records) > 0 {
		return
	}

	now := time.Now()
	rec, err := docstore.ToRecord(&domain.SysOpr{
		Realname:  "administrator",
		Mobile:    "0000",
		Email:     "N/A",
		Username:  superUsername,
		Level:     "super",
		Status:    "enabled",
		Remark:    "super",
		LastLogin: now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		zap.L().Error("failed to encode super operator", zap.Error(err))
		return
	}
	if _, err := a.store.Create(ctx, "sys_opr", rec); err != nil {
		zap.L().Error("failed to create default super operator", zap.Error(err))
		return
	}
	zap.L().Info("initialized default super operator", zap.String("username", superUsername))
}

// checkProducts seeds the demo catalog into an empty store.
func (a *Application) checkProducts() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, total, err := a.store.List(ctx, catalog.Collection, docstore.Query{Limit: 1})
	if err != nil {
		zap.L().Error("failed to query products for seeding", zap.Error(err))
		return
	}
	if total > 0 {
		return
	}

	now := time.Now()
	for _, p := range catalog.SampleProducts() {
		p.ID = 0
		p.CreatedAt = now
		p.UpdatedAt = now
		rec, err := docstore.ToRecord(&p)
		if err != nil {
			zap.L().Error("failed to encode demo product", zap.String("name", p.Name), zap.Error(err))
			continue
		}
		delete(rec, "id")
		if _, err := a.store.Create(ctx, catalog.Collection, rec); err != nil {
			zap.L().Error("failed to create demo product", zap.String("name", p.Name), zap.Error(err))
			continue
		}
		zap.L().Info("initialized demo product", zap.String("name", p.Name))
	}
}

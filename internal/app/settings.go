package app

import (
	"context"
	"sync"
	"time"

	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const settingsCollection = "sys_config"

// ConfigManager caches the sys_config collection in memory. Values are
// reloaded periodically by a cron job and on every Set.
type ConfigManager struct {
	store  docstore.Store
	mu     sync.RWMutex
	values map[string]string // "category.name" -> value
	ids    map[string]int64
}

func NewConfigManager(store docstore.Store) *ConfigManager {
	cm := &ConfigManager{
		store:  store,
		values: make(map[string]string),
		ids:    make(map[string]int64),
	}
	if err := cm.Reload(); err != nil {
		zap.L().Error("initial settings load failed", zap.Error(err))
	}
	return cm
}

func settingsKey(category, name string) string {
	return category + "." + name
}

func (cm *ConfigManager) Reload() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, _, err := cm.store.List(ctx, settingsCollection, docstore.Query{OrderBy: "sort"})
	if err != nil {
		return errors.Wrap(err, "load settings")
	}

	values := make(map[string]string, len(records))
	ids := make(map[string]int64, len(records))
	for _, rec := range records {
		var cfg domain.SysConfig
		if err := docstore.DecodeRecord(rec, &cfg); err != nil {
			return err
		}
		key := settingsKey(cfg.Type, cfg.Name)
		values[key] = cfg.Value
		ids[key] = cfg.ID
	}

	cm.mu.Lock()
	cm.values = values
	cm.ids = ids
	cm.mu.Unlock()
	return nil
}

func (cm *ConfigManager) GetString(category, name string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.values[settingsKey(category, name)]
}

func (cm *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(cm.GetString(category, name))
}

func (cm *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(cm.GetString(category, name))
}

func (cm *ConfigManager) GetFloat64(category, name string) float64 {
	return cast.ToFloat64(cm.GetString(category, name))
}

// Set persists a value and refreshes the cache entry.
func (cm *ConfigManager) Set(category, name, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := settingsKey(category, name)
	cm.mu.RLock()
	id, exists := cm.ids[key]
	cm.mu.RUnlock()

	if exists {
		err := cm.store.Update(ctx, settingsCollection, id, docstore.Record{
			"value":      value,
			"updated_at": time.Now(),
		})
		if err != nil {
			return errors.Wrapf(err, "update setting %s", key)
		}
	} else {
		now := time.Now()
		rec, err := docstore.ToRecord(&domain.SysConfig{
			Type:      category,
			Name:      name,
			Value:     value,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		id, err = cm.store.Create(ctx, settingsCollection, rec)
		if err != nil {
			return errors.Wrapf(err, "create setting %s", key)
		}
	}

	cm.mu.Lock()
	cm.values[key] = value
	cm.ids[key] = id
	cm.mu.Unlock()
	return nil
}

// Dump lists cached settings for the admin settings screen.
func (cm *ConfigManager) Dump() map[string]string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	out := make(map[string]string, len(cm.values))
	for k, v := range cm.values {
		out[k] = v
	}
	return out
}

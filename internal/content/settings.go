package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const settingsKey = "site:settings"

var tracer = otel.Tracer("truckshop.internal.content")

// SettingsStore holds the shop's site settings.
type SettingsStore interface {
	Get(ctx context.Context) (SiteSettings, error)
	Save(ctx context.Context, settings SiteSettings) error
}

// DefaultSettings is what the site shows before an admin saves settings.
func DefaultSettings(shopName, phone string) SiteSettings {
	return SiteSettings{
		ShopName:           shopName,
		Phone:              phone,
		Hours:              "Mon-Fri 7am-7pm, Sat 8am-2pm",
		EmergencyAvailable: true,
	}
}

// RedisSettingsStore keeps settings as one JSON value in Redis.
type RedisSettingsStore struct {
	redis    *redis.Client
	defaults SiteSettings
}

// NewRedisSettingsStore creates a Redis-backed settings store. defaults is
// returned until settings are saved.
func NewRedisSettingsStore(client *redis.Client, defaults SiteSettings) *RedisSettingsStore {
	if client == nil {
		panic("content: redis client cannot be nil")
	}
	return &RedisSettingsStore{redis: client, defaults: defaults}
}

func (s *RedisSettingsStore) Get(ctx context.Context) (SiteSettings, error) {
	ctx, span := tracer.Start(ctx, "content.settings.get")
	defer span.End()

	data, err := s.redis.Get(ctx, settingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.defaults, nil
		}
		span.RecordError(err)
		return SiteSettings{}, fmt.Errorf("content: load settings: %w", err)
	}
	var settings SiteSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		span.RecordError(err)
		return SiteSettings{}, fmt.Errorf("content: decode settings: %w", err)
	}
	return settings, nil
}

func (s *RedisSettingsStore) Save(ctx context.Context, settings SiteSettings) error {
	ctx, span := tracer.Start(ctx, "content.settings.save")
	defer span.End()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("content: encode settings: %w", err)
	}
	if err := s.redis.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("content: save settings: %w", err)
	}
	return nil
}

// MemorySettingsStore keeps settings in process memory.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings SiteSettings
}

func NewMemorySettingsStore(defaults SiteSettings) *MemorySettingsStore {
	return &MemorySettingsStore{settings: defaults}
}

func (s *MemorySettingsStore) Get(ctx context.Context) (SiteSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *MemorySettingsStore) Save(ctx context.Context, settings SiteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

var (
	_ SettingsStore = (*RedisSettingsStore)(nil)
	_ SettingsStore = (*MemorySettingsStore)(nil)
)

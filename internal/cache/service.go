package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gustimaulan/fb-marketing-dash/internal/metrics"
	"go.uber.org/zap"
)

// entryVersion invalidates persisted entries across structure changes.
const entryVersion = "1.0"

// TTLInfinite disables expiry for a Get; used for user preferences.
const TTLInfinite time.Duration = -1

// Key naming conventions. Date-ranged keys append _<from>_<to>.
const (
	KeyPrefixAdMetrics   = "fb_ads_data"
	KeyPrefixSalesOrders = "sales_orders"
	KeyPrefixLeadsRatio  = "leads_ratio_data"
	KeyInvoiceLines      = "invoice_lines_all"
	KeyUserPreferences   = "user_preferences"
)

// Entry is the persisted envelope around a cached value.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Version   string          `json:"version,omitempty"`
}

// KeyInfo describes one cache entry's age for diagnostics.
type KeyInfo struct {
	Size      int           `json:"size"`
	Timestamp int64         `json:"timestamp"`
	Age       time.Duration `json:"age"`
	Remaining time.Duration `json:"remaining"`
	Expired   bool          `json:"expired"`
}

// Service is the TTL cache. Storage failures are absorbed as misses
// and logged, never surfaced to callers: a broken cache degrades to
// fetching fresh, not to a dead dashboard. Constructed once per
// process and passed by reference; there are no package-level maps.
type Service struct {
	store   Store
	clock   Clock
	logger  *zap.Logger
	metrics *metrics.Metrics

	defaultTTL time.Duration

	// Dedup is the 60s request-deduplication window fronting the
	// persistent tier.
	Dedup *Dedup
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects a clock; tests use a fake.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDedupWindow sets the request-deduplication window.
func WithDedupWindow(w time.Duration) Option {
	return func(s *Service) { s.Dedup = NewDedup(w, s.clock) }
}

// NewService creates a cache service over the given store.
func NewService(store Store, defaultTTL time.Duration, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		clock:      RealClock(),
		logger:     logger,
		defaultTTL: defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Dedup == nil {
		s.Dedup = NewDedup(time.Minute, s.clock)
	}
	return s
}

// DefaultTTL returns the configured default entry lifetime.
func (s *Service) DefaultTTL() time.Duration { return s.defaultTTL }

// Set persists value under key wrapped in a timestamped entry.
// Failures are logged and swallowed.
func (s *Service) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	entry := Entry{
		Data:      data,
		Timestamp: s.clock.Now().UnixMilli(),
		Version:   entryVersion,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Get unmarshals the entry for key into dst if it is younger than
// maxAge. Stale entries are deleted on read (lazy eviction); corrupt
// entries are deleted and treated as misses; backend errors are
// misses. maxAge of TTLInfinite never expires.
func (s *Service) Get(ctx context.Context, key string, maxAge time.Duration, dst any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
			s.metrics.RecordCacheMiss("error")
			return false
		}
		s.metrics.RecordCacheMiss("absent")
		return false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("cache entry corrupt, discarding",
			zap.String("key", key), zap.Error(err))
		s.evict(ctx, key, "corrupt")
		return false
	}

	if maxAge != TTLInfinite {
		age := s.clock.Now().Sub(time.UnixMilli(entry.Timestamp))
		if age > maxAge {
			s.evict(ctx, key, "expired")
			return false
		}
	}

	if err := json.Unmarshal(entry.Data, dst); err != nil {
		s.logger.Warn("cache payload corrupt, discarding",
			zap.String("key", key), zap.Error(err))
		s.evict(ctx, key, "corrupt")
		return false
	}
	s.metrics.RecordCacheHit("persistent")
	return true
}

// Clear removes one entry.
func (s *Service) Clear(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
	s.Dedup.Delete(key)
}

// ClearPrefix removes all entries whose key starts with prefix and
// returns how many were deleted.
func (s *Service) ClearPrefix(ctx context.Context, prefix string) int {
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		s.logger.Warn("cache key scan failed", zap.String("prefix", prefix), zap.Error(err))
		return 0
	}
	removed := 0
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			s.logger.Warn("cache delete failed", zap.String("key", k), zap.Error(err))
			continue
		}
		removed++
	}
	s.Dedup.Clear()
	return removed
}

// Info reports age and expiry status for all entries under prefix,
// judged against the default TTL.
func (s *Service) Info(ctx context.Context, prefix string) map[string]KeyInfo {
	info := make(map[string]KeyInfo)
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		s.logger.Warn("cache key scan failed", zap.String("prefix", prefix), zap.Error(err))
		return info
	}
	now := s.clock.Now()
	for _, k := range keys {
		raw, err := s.store.Get(ctx, k)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		age := now.Sub(time.UnixMilli(entry.Timestamp))
		remaining := s.defaultTTL - age
		if remaining < 0 {
			remaining = 0
		}
		info[k] = KeyInfo{
			Size:      len(raw),
			Timestamp: entry.Timestamp,
			Age:       age,
			Remaining: remaining,
			Expired:   age > s.defaultTTL,
		}
	}
	return info
}

func (s *Service) evict(ctx context.Context, key, cause string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.RecordEviction(cause)
	s.metrics.RecordCacheMiss(cause)
}

// RangedKey builds a date-ranged cache key: <prefix>_<from>_<to>.
func RangedKey(prefix, dateFrom, dateTo string) string {
	return prefix + "_" + dateFrom + "_" + dateTo
}

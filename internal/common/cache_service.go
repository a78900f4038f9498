package common

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"mesaclub/reservas/internal/metrics"
)

// CacheService is a small in-memory cache in front of sector/event
// lookups on the read path.
type CacheService struct {
	cache   *cache.Cache
	metrics *metrics.MetricsRegistry
}

func NewCacheService(defaultExpirationSeconds, cleanUpIntervalSeconds int, metricsReg *metrics.MetricsRegistry) *CacheService {
	defaultExpiration := time.Duration(defaultExpirationSeconds) * time.Second
	cleanUpInterval := time.Duration(cleanUpIntervalSeconds) * time.Second
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c, metrics: metricsReg}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		cs.recordHit(key)
		return val, nil
	}
	cs.recordMiss(key)

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.Set(key, val, duration)
	return val, nil
}

func (cs *CacheService) recordHit(key string) {
	if cs.metrics == nil {
		return
	}
	cs.metrics.CacheHitsTotal.WithLabelValues(keyPattern(key)).Inc()
}

func (cs *CacheService) recordMiss(key string) {
	if cs.metrics == nil {
		return
	}
	cs.metrics.CacheMissesTotal.WithLabelValues(keyPattern(key)).Inc()
}

// keyPattern strips the id so metrics group by prefix ("EVENT_",
// "SECTOR_") instead of exploding label cardinality.
func keyPattern(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 {
		return key[:i+1]
	}
	return key
}

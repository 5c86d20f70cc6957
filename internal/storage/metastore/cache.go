package metastore

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_metadata_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш метаданных.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_metadata_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша метаданных.",
	})
)

// CachedStore — LRU-кэш с TTL поверх Store.
// Кэшируются только результаты Get; запись и удаление идут в основное
// хранилище и инвалидируют запись кэша.
type CachedStore struct {
	inner Store
	cache *expirable.LRU[string, model.FileRecord]

	// mu упорядочивает заполнение кэша после промаха с записью,
	// чтобы устаревшее значение не попало в кэш после инвалидации
	mu sync.Mutex
}

// NewCachedStore создаёт кэш на maxSize записей с временем жизни ttl.
func NewCachedStore(inner Store, maxSize int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: expirable.NewLRU[string, model.FileRecord](maxSize, nil, ttl),
	}
}

// Get возвращает запись из кэша или из основного хранилища.
func (c *CachedStore) Get(filename string) (*model.FileRecord, error) {
	if rec, ok := c.cache.Get(filename); ok {
		cacheHitsTotal.Inc()
		return &rec, nil
	}
	cacheMissesTotal.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.inner.Get(filename)
	if err != nil || rec == nil {
		return rec, err
	}
	c.cache.Add(filename, *rec)
	return rec, nil
}

// List всегда читает основное хранилище.
func (c *CachedStore) List() ([]model.FileRecord, error) {
	return c.inner.List()
}

// Put сохраняет запись и сбрасывает её в кэше.
func (c *CachedStore) Put(filename string, rec model.FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.cache.Remove(filename)
	return c.inner.Put(filename, rec)
}

// Delete удаляет запись и сбрасывает её в кэше.
func (c *CachedStore) Delete(filename string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.cache.Remove(filename)
	return c.inner.Delete(filename)
}

// Close очищает кэш и закрывает основное хранилище.
func (c *CachedStore) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}

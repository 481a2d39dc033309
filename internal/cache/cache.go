package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type Manager struct {
	cache *cache.Cache
	mu    sync.RWMutex
}

// NewManager builds a TTL cache. A zero or negative defaultTTL means
// entries never expire, which is how the og:image cache runs: written at
// most once per key for the life of the process.
func NewManager(defaultTTL time.Duration) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = cache.NoExpiration
	}
	return &Manager{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.Get(key)
}

func (m *Manager) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(key, value, ttl)
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key)
}

func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

// GetImage looks up a resolved image URL for an article link. The second
// return distinguishes "never resolved" from a cached negative result
// (found=true, url="").
func (m *Manager) GetImage(link string) (url string, found bool) {
	v, ok := m.Get("og:" + link)
	if !ok {
		return "", false
	}
	url, _ = v.(string)
	return url, true
}

// SetImage records a resolution outcome for an article link. An empty url
// is a deliberate negative entry so failed lookups are never retried.
func (m *Manager) SetImage(link, url string) {
	m.Set("og:"+link, url, 0)
}

package memcache

import (
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Restaurante-api/internal/application/availability"
)

var _ availability.Cache = (*Cache)(nil)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache es un caché TTL en memoria protegido por mutex, con barrido periódico
// de entradas vencidas. Suficiente para un solo proceso; si el API escala
// horizontalmente habrá que mover esto a Redis.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	once    sync.Once
}

// New construye el caché y arranca el barrido en segundo plano.
// sweepInterval <= 0 usa un minuto.
func New(sweepInterval time.Duration) *Cache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	c := &Cache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go c.sweep(sweepInterval)
	return c
}

// Get devuelve el valor si existe y no ha vencido.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set guarda el valor con el TTL dado. ttl <= 0 no cachea nada.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// InvalidatePrefix borra todas las claves que empiecen por prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Stop detiene el barrido en segundo plano. Idempotente.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

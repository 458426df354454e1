// Package cache resolves a (key type, key name) pair to a data key snapshot or a ready
// signing plugin under concurrent signing requests.
//
// The caches are read-through and best effort. Concurrent misses for the same key may
// each load it; the last insert wins and every later lookup returns that entry. No lock
// is held while loading. Entries are never evicted or invalidated, so a key disabled
// after it was cached keeps being served until the process restarts.
package cache

import (
	"context"
	"sync"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	signingService "github.com/allisson/signatrust/internal/signing/service"
)

// DataKeyLoader looks up the enabled data key of a type by name.
type DataKeyLoader interface {
	GetEnabledKeyByTypeAndName(
		ctx context.Context,
		keyType dataKeyDomain.KeyType,
		name string,
	) (*dataKeyDomain.DataKey, error)
}

// PluginLoader builds a signing plugin from an encrypted data key.
type PluginLoader interface {
	LoadPlugin(ctx context.Context, dataKey *dataKeyDomain.DataKey) (signingService.SigningPlugin, error)
}

type readThrough[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func newReadThrough[T any]() *readThrough[T] {
	return &readThrough[T]{entries: make(map[string]T)}
}

func (c *readThrough[T]) get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	entry, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return entry, nil
}

func (c *readThrough[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// DataKeyCache caches data key snapshots. Key material stays encrypted in the snapshot.
type DataKeyCache struct {
	repo    DataKeyLoader
	entries *readThrough[*dataKeyDomain.DataKey]
}

// NewDataKeyCache creates an empty DataKeyCache.
func NewDataKeyCache(repo DataKeyLoader) *DataKeyCache {
	return &DataKeyCache{repo: repo, entries: newReadThrough[*dataKeyDomain.DataKey]()}
}

// Get returns the cached data key, loading the enabled key from the repository on a miss.
func (c *DataKeyCache) Get(
	ctx context.Context,
	keyType dataKeyDomain.KeyType,
	name string,
) (*dataKeyDomain.DataKey, error) {
	return c.entries.get(ctx, dataKeyDomain.CacheKey(keyType, name),
		func(ctx context.Context) (*dataKeyDomain.DataKey, error) {
			return c.repo.GetEnabledKeyByTypeAndName(ctx, keyType, name)
		},
	)
}

// Len returns the number of cached entries.
func (c *DataKeyCache) Len() int {
	return c.entries.len()
}

// PluginCache caches fully constructed signing plugins. The decrypted SecKey used to
// build a plugin is destroyed as soon as the plugin exists.
type PluginCache struct {
	repo    DataKeyLoader
	backend PluginLoader
	entries *readThrough[signingService.SigningPlugin]
}

// NewPluginCache creates an empty PluginCache.
func NewPluginCache(repo DataKeyLoader, backend PluginLoader) *PluginCache {
	return &PluginCache{
		repo:    repo,
		backend: backend,
		entries: newReadThrough[signingService.SigningPlugin](),
	}
}

// Get returns the cached plugin, building it from the enabled key on a miss.
func (c *PluginCache) Get(
	ctx context.Context,
	keyType dataKeyDomain.KeyType,
	name string,
) (signingService.SigningPlugin, error) {
	return c.entries.get(ctx, dataKeyDomain.CacheKey(keyType, name),
		func(ctx context.Context) (signingService.SigningPlugin, error) {
			dataKey, err := c.repo.GetEnabledKeyByTypeAndName(ctx, keyType, name)
			if err != nil {
				return nil, err
			}
			return c.backend.LoadPlugin(ctx, dataKey)
		},
	)
}

// Len returns the number of cached entries.
func (c *PluginCache) Len() int {
	return c.entries.len()
}

// Package cache stores the results of the background jobs: the featured
// speaker of each conference and the current announcement.
package cache

import (
	"context"
	"errors"
	"sync"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("cache miss")

const ANNOUNCEMENTS_KEY string = "RECENT_ANNOUNCEMENTS"

// FeaturedSpeakerKey is the cache key of a conference's featured speaker.
func FeaturedSpeakerKey(websafeConferenceKey string) string {
	return websafeConferenceKey + "_featuredSpeaker"
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: map[string]string{}}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.values[key]
	if !ok {
		return "", ErrMiss
	}
	return value, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}

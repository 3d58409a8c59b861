package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"restaurant-orders/internal/dto"

	"github.com/redis/go-redis/v9"
)

// OrderCache stores rendered order details by id.
type OrderCache interface {
	Get(ctx context.Context, id uint) (*dto.OrderDetail, bool, error)
	Set(ctx context.Context, detail *dto.OrderDetail) error
	Delete(ctx context.Context, id uint) error
}

type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{client: client, ttl: ttl}
}

func key(id uint) string {
	return fmt.Sprintf("order:%d", id)
}

func (c *RedisOrderCache) Get(ctx context.Context, id uint) (*dto.OrderDetail, bool, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var detail dto.OrderDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, false, fmt.Errorf("decode cached order %d: %w", id, err)
	}
	return &detail, true, nil
}

func (c *RedisOrderCache) Set(ctx context.Context, detail *dto.OrderDetail) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(detail.ID), raw, c.ttl).Err()
}

func (c *RedisOrderCache) Delete(ctx context.Context, id uint) error {
	return c.client.Del(ctx, key(id)).Err()
}

// Memory is a map-backed OrderCache for single-process runs and tests.
// Entries expire after ttl; a zero ttl keeps them until deleted.
type Memory struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[uint]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	detail    dto.OrderDetail
	expiresAt time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, items: map[uint]memoryEntry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, id uint) (*dto.OrderDetail, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[id]
	if !ok || m.expired(e) {
		return nil, false, nil
	}
	d := e.detail
	return &d, true, nil
}

// Set stores detail and drops entries that have already expired.
func (m *Memory) Set(_ context.Context, detail *dto.OrderDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.items {
		if m.expired(e) {
			delete(m.items, id)
		}
	}

	e := memoryEntry{detail: *detail}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.items[detail.ID] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len counts stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

// Evict deletes the cached details of ids. It stops at the first failure.
func Evict(ctx context.Context, c OrderCache, ids []uint) error {
	if c == nil {
		return nil
	}
	for _, id := range ids {
		if err := c.Delete(ctx, id); err != nil {
			return fmt.Errorf("evict order %d: %w", id, err)
		}
	}
	return nil
}

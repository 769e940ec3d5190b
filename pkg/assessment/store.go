package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps submitted results for the length of a session.
type Store interface {
	Save(ctx context.Context, result *Result) error
	Get(ctx context.Context, id string) (*Result, error)
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "afi-risk:assessment:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, result *Result) error {
	payload, err := encodeResult(result)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+result.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing assessment %s: %w", result.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Result, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading assessment %s: %w", id, err)
	}
	return decodeResult(id, payload)
}

// encodeResult and decodeResult are the Redis payload format.
func encodeResult(result *Result) ([]byte, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding assessment %s: %w", result.ID, err)
	}
	return payload, nil
}

func decodeResult(id string, payload []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding assessment %s: %w", id, err)
	}
	return &result, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("deleting assessment %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type memoryEntry struct {
	result  Result
	expires time.Time
}

// MemoryStore is the in-process Store used when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	entry := memoryEntry{result: *result}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.entries[result.ID] = entry
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || s.expired(entry) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	result := entry.result
	return &result, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	delete(s.entries, id)
	if !ok || s.expired(entry) {
		return ErrNotFound
	}
	return nil
}

// Len counts live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return len(s.entries)
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

func (s *MemoryStore) evictLocked() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}

// Package editsession enforces the single-editor-at-a-time model: one lease
// per document, held in Redis with a TTL so abandoned sessions expire on
// their own.
package editsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another editor holds the lease.
type ErrHeld struct {
	Holder string
}

func (e *ErrHeld) Error() string {
	return fmt.Sprintf("document is being edited by %s", e.Holder)
}

// ErrNotHeld is returned when refreshing or releasing a lease the caller
// does not hold.
var ErrNotHeld = errors.New("editsession: lease not held")

type leaseData struct {
	Editor     string    `json:"editor"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lease is a granted edit session.
type Lease struct {
	DocumentID string    `json:"document_id"`
	Editor     string    `json:"editor"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RedisStore holds edit leases in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, prefix: "editlease:", ttl: ttl}
}

func (s *RedisStore) key(documentID string) string {
	return s.prefix + documentID
}

// Acquire grants the lease if it is free, or refreshes it if the same editor
// already holds it. Anyone else gets ErrHeld.
func (s *RedisStore) Acquire(ctx context.Context, documentID, editor string) (Lease, error) {
	data, err := json.Marshal(leaseData{Editor: editor, AcquiredAt: time.Now()})
	if err != nil {
		return Lease{}, fmt.Errorf("marshal lease: %w", err)
	}

	for {
		ok, err := s.client.SetNX(ctx, s.key(documentID), data, s.ttl).Result()
		if err != nil {
			return Lease{}, fmt.Errorf("acquire lease: %w", err)
		}
		if ok {
			return Lease{DocumentID: documentID, Editor: editor, ExpiresAt: time.Now().Add(s.ttl)}, nil
		}

		holder, err := s.Holder(ctx, documentID)
		if errors.Is(err, redis.Nil) {
			// Lease expired between the SetNX and the lookup.
			continue
		}
		if err != nil {
			return Lease{}, err
		}
		if holder != editor {
			return Lease{}, &ErrHeld{Holder: holder}
		}
		if err := s.Refresh(ctx, documentID, editor); err != nil {
			return Lease{}, err
		}
		return Lease{DocumentID: documentID, Editor: editor, ExpiresAt: time.Now().Add(s.ttl)}, nil
	}
}

// Refresh extends the TTL for the current holder.
func (s *RedisStore) Refresh(ctx context.Context, documentID, editor string) error {
	holder, err := s.Holder(ctx, documentID)
	if err != nil {
		return err
	}
	if holder != editor {
		return ErrNotHeld
	}
	if err := s.client.Expire(ctx, s.key(documentID), s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh lease: %w", err)
	}
	return nil
}

// Release frees the lease. Only the holder may release; a missing lease is
// not an error since expiry releases too.
func (s *RedisStore) Release(ctx context.Context, documentID, editor string) error {
	holder, err := s.Holder(ctx, documentID)
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if holder != editor {
		return ErrNotHeld
	}
	if err := s.client.Del(ctx, s.key(documentID)).Err(); err != nil {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}

// ForceRelease frees the lease regardless of holder. Pairs with force unlock
// and reset at the document layer.
func (s *RedisStore) ForceRelease(ctx context.Context, documentID string) error {
	if err := s.client.Del(ctx, s.key(documentID)).Err(); err != nil {
		return fmt.Errorf("force release lease: %w", err)
	}
	return nil
}

// Holder returns the current lease holder. A redis.Nil error means the lease
// is free.
func (s *RedisStore) Holder(ctx context.Context, documentID string) (string, error) {
	raw, err := s.client.Get(ctx, s.key(documentID)).Result()
	if err == redis.Nil {
		return "", redis.Nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup lease: %w", err)
	}
	var data leaseData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", fmt.Errorf("unmarshal lease: %w", err)
	}
	return data.Editor, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

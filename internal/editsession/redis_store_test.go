package editsession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("failed to create lease store: %v", err)
	}
	return store, s
}

func TestAcquireAndHolder(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	lease, err := store.Acquire(ctx, "doc-1", "alice")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if lease.Editor != "alice" || lease.DocumentID != "doc-1" {
		t.Errorf("lease = %+v", lease)
	}

	holder, err := store.Holder(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Holder failed: %v", err)
	}
	if holder != "alice" {
		t.Errorf("holder = %q", holder)
	}
}

func TestAcquireHeldByOther(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}

	_, err := store.Acquire(ctx, "doc-1", "bob")
	var held *ErrHeld
	if !errors.As(err, &held) {
		t.Fatalf("err = %v, want ErrHeld", err)
	}
	if held.Holder != "alice" {
		t.Errorf("holder = %q", held.Holder)
	}
}

func TestAcquireReentrant(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Errorf("re-acquire by holder failed: %v", err)
	}
}

func TestLeaseExpires(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}

	s.FastForward(2 * time.Minute)

	if _, err := store.Acquire(ctx, "doc-1", "bob"); err != nil {
		t.Errorf("acquire after expiry failed: %v", err)
	}
}

// dropBeforeGet deletes the key right before any GET so the holder lookup
// observes a lease that expired after a failed SetNX.
type dropBeforeGet struct {
	s   *miniredis.Miniredis
	key string
}

func (h dropBeforeGet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h dropBeforeGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "get" {
			h.s.Del(h.key)
		}
		return next(ctx, cmd)
	}
}

func (h dropBeforeGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestAcquireRetriesWhenLeaseExpiresMidCheck(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}

	store.client.AddHook(dropBeforeGet{s: s, key: "editlease:doc-1"})

	lease, err := store.Acquire(ctx, "doc-1", "bob")
	if err != nil {
		t.Fatalf("Acquire after mid-check expiry failed: %v", err)
	}
	if lease.Editor != "bob" {
		t.Errorf("editor = %q, want bob", lease.Editor)
	}
}

func TestRefresh(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}

	s.FastForward(30 * time.Second)
	if err := store.Refresh(ctx, "doc-1", "alice"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	s.FastForward(45 * time.Second)

	// Still held because the refresh restarted the minute.
	holder, err := store.Holder(ctx, "doc-1")
	if err != nil || holder != "alice" {
		t.Errorf("holder = %q, %v", holder, err)
	}

	if err := store.Refresh(ctx, "doc-1", "bob"); !errors.Is(err, ErrNotHeld) {
		t.Errorf("Refresh by non-holder = %v, want ErrNotHeld", err)
	}
}

func TestRelease(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}

	if err := store.Release(ctx, "doc-1", "bob"); !errors.Is(err, ErrNotHeld) {
		t.Errorf("Release by non-holder = %v, want ErrNotHeld", err)
	}
	if err := store.Release(ctx, "doc-1", "alice"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := store.Holder(ctx, "doc-1"); !errors.Is(err, redis.Nil) {
		t.Errorf("Holder after release = %v, want redis.Nil", err)
	}

	// Releasing a free lease is fine.
	if err := store.Release(ctx, "doc-1", "alice"); err != nil {
		t.Errorf("Release of free lease = %v", err)
	}
}

func TestForceRelease(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if _, err := store.Acquire(ctx, "doc-1", "alice"); err != nil {
		t.Fatal(err)
	}
	if err := store.ForceRelease(ctx, "doc-1"); err != nil {
		t.Fatalf("ForceRelease failed: %v", err)
	}
	if _, err := store.Acquire(ctx, "doc-1", "bob"); err != nil {
		t.Errorf("acquire after force release failed: %v", err)
	}
}

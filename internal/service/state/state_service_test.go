package state

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestFlushWritesChangedLevels(t *testing.T) {
	mr, client := newTestClient(t)
	svc := NewStateService(client)
	ctx := context.Background()

	svc.SetLevel("boat-1", 2)
	svc.SetLevel("boat-2", 0)

	n, err := svc.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 flushed levels, got %d", n)
	}
	if got := mr.HGet(WarningLevelRedisKey, "boat-1"); got != "2" {
		t.Fatalf("expected boat-1 level 2 in redis, got %q", got)
	}

	// nothing changed since the last flush
	if n, _ := svc.Flush(ctx); n != 0 {
		t.Fatalf("expected no writes, got %d", n)
	}
}

func TestRestoreLoadsLevels(t *testing.T) {
	mr, client := newTestClient(t)
	mr.HSet(WarningLevelRedisKey, "boat-1", "3", "boat-2", "junk")

	svc := NewStateService(client)
	n, err := svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 restored level, got %d", n)
	}
	if svc.LastLevel("boat-1") != 3 {
		t.Fatalf("expected restored level 3, got %d", svc.LastLevel("boat-1"))
	}
	if svc.LastLevel("boat-2") != 0 {
		t.Fatalf("malformed level must default to 0")
	}

	// restored levels are not written back
	if n, _ := svc.Flush(context.Background()); n != 0 {
		t.Fatalf("expected no writes after restore, got %d", n)
	}
}

func TestStateServiceWithoutRedis(t *testing.T) {
	svc := NewStateService(nil)
	svc.SetLevel("boat-1", 1)

	if svc.LastLevel("boat-1") != 1 {
		t.Fatalf("expected in-memory level")
	}
	if svc.LastLevel("unknown") != 0 {
		t.Fatalf("unknown boat must default to 0")
	}
	if n, err := svc.Flush(context.Background()); n != 0 || err != nil {
		t.Fatalf("memory-only flush should be a no-op, got %d %v", n, err)
	}
	if n, err := svc.Restore(context.Background()); n != 0 || err != nil {
		t.Fatalf("memory-only restore should be a no-op, got %d %v", n, err)
	}
}

func TestFlushReportsRedisErrors(t *testing.T) {
	mr, client := newTestClient(t)
	svc := NewStateService(client)
	svc.SetLevel("boat-1", 1)

	mr.Close()
	if _, err := svc.Flush(context.Background()); err == nil {
		t.Fatalf("expected error with redis down")
	}

	// the level stays dirty for the next attempt
	if len(svc.levels.GetDirty()) != 1 {
		t.Fatalf("failed flush must keep levels dirty")
	}
}

func TestFlushKeepsLevelsChangedDuringWrite(t *testing.T) {
	mr, client := newTestClient(t)
	svc := NewStateService(client)
	ctx := context.Background()

	svc.SetLevel("boat-1", 1)

	// a report lands between the dirty snapshot and the Redis write
	client.AddHook(beforeHSet(func() { svc.SetLevel("boat-1", 2) }))

	if _, err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := mr.HGet(WarningLevelRedisKey, "boat-1"); got != "1" {
		t.Fatalf("expected snapshot level 1 written first, got %q", got)
	}

	n, err := svc.Flush(ctx)
	if err != nil {
		t.Fatalf("second Flush failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected the newer level to be flushed, got %d writes", n)
	}
	if got := mr.HGet(WarningLevelRedisKey, "boat-1"); got != "2" {
		t.Fatalf("expected level 2 in redis, got %q", got)
	}
}

func TestSwapLevel(t *testing.T) {
	svc := NewStateService(nil)

	if prev, changed := svc.SwapLevel("boat-1", 0); changed || prev != 0 {
		t.Fatalf("unknown boat already at level 0, got (%d, %v)", prev, changed)
	}
	if prev, changed := svc.SwapLevel("boat-1", 2); !changed || prev != 0 {
		t.Fatalf("expected change from 0, got (%d, %v)", prev, changed)
	}
	if _, changed := svc.SwapLevel("boat-1", 2); changed {
		t.Fatalf("same level must not report a change")
	}
	if svc.LastLevel("boat-1") != 2 {
		t.Fatalf("expected level 2, got %d", svc.LastLevel("boat-1"))
	}
}

func TestSwapLevelConcurrent(t *testing.T) {
	svc := NewStateService(nil)

	var changes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, changed := svc.SwapLevel("boat-1", 1); changed {
				changes.Add(1)
			}
		}()
	}
	wg.Wait()

	if changes.Load() != 1 {
		t.Fatalf("expected exactly one change, got %d", changes.Load())
	}
}

// beforeHSet runs fn once, just before the first HSET command is sent
type beforeHSet func()

func (h beforeHSet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h beforeHSet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	var once sync.Once
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "hset" {
			once.Do(h)
		}
		return next(ctx, cmd)
	}
}

func (h beforeHSet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

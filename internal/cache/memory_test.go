package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGetJSON(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := store.SetJSON(ctx, "k", payload{Name: "transfer", Count: 3}, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got payload
	hit, err := store.GetJSON(ctx, "k", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !hit {
		t.Fatal("expected a hit")
	}
	if got.Name != "transfer" || got.Count != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}

	if hit, _ := store.GetJSON(ctx, "missing", &got); hit {
		t.Fatal("expected a miss for an unknown key")
	}

	if err := store.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if hit, _ := store.GetJSON(ctx, "k", &got); hit {
		t.Fatal("expected a miss after delete")
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SetJSON(ctx, "short", 1, time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got int
	if hit, _ := store.GetJSON(ctx, "short", &got); hit {
		t.Fatal("expected expired key to miss")
	}

	if err := store.SetJSON(ctx, "renewed", 1, time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Expire(ctx, "renewed", time.Hour); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if hit, _ := store.GetJSON(ctx, "renewed", &got); !hit {
		t.Fatal("expected renewed key to survive")
	}
}

func TestMemoryStoreHashMerge(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.HSetJSON(ctx, "h", map[string]interface{}{"1": "a", "2": "b"}); err != nil {
		t.Fatalf("hset failed: %v", err)
	}
	// Later writes merge field by field instead of replacing the hash.
	if err := store.HSetJSON(ctx, "h", map[string]interface{}{"2": "bb", "3": "c"}); err != nil {
		t.Fatalf("hset failed: %v", err)
	}

	all, err := store.HGetAll(ctx, "h")
	if err != nil {
		t.Fatalf("hgetall failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 fields after merge, got %d", len(all))
	}

	var field string
	hit, err := store.HGetJSON(ctx, "h", "2", &field)
	if err != nil {
		t.Fatalf("hget failed: %v", err)
	}
	if !hit || field != "bb" {
		t.Fatalf("expected merged field bb, got hit=%v value=%q", hit, field)
	}

	if err := store.HDel(ctx, "h", "1", "3"); err != nil {
		t.Fatalf("hdel failed: %v", err)
	}
	all, _ = store.HGetAll(ctx, "h")
	if len(all) != 1 {
		t.Fatalf("expected 1 field after hdel, got %d", len(all))
	}
}

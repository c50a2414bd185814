package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"AutoLead/bot/chat"
)

func testStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreWithClient(client, 30*time.Minute), mr
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	state := chat.NewSessionState("conv-1", "shop-1", "telegram")
	state.CurrentStep = chat.StepProblem
	state.Collected.DeviceBrand = "Toyota"
	state.PushHistory("user", "привет")

	if err := store.Save(ctx, "shop-1", "user-1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "shop-1", "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored state")
	}
	if got.ConversationID != "conv-1" || got.CurrentStep != chat.StepProblem {
		t.Errorf("unexpected state %+v", got)
	}
	if got.Collected.DeviceBrand != "Toyota" {
		t.Errorf("expected collected data round-tripped, got %q", got.Collected.DeviceBrand)
	}
	if len(got.MessageHistory) != 1 {
		t.Errorf("expected history round-tripped, got %d entries", len(got.MessageHistory))
	}
}

func TestRedisStore_GetMissingIsNil(t *testing.T) {
	store, _ := testStore(t)

	got, err := store.Get(context.Background(), "shop-1", "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing session, got %+v", got)
	}
}

func TestRedisStore_SaveResetsTTL(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()
	state := chat.NewSessionState("conv-1", "shop-1", "telegram")

	if err := store.Save(ctx, "shop-1", "user-1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	key := "session:shop-1:user-1"
	if ttl := mr.TTL(key); ttl != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %v", ttl)
	}

	// A turn later the TTL starts over.
	mr.FastForward(20 * time.Minute)
	if err := store.Save(ctx, "shop-1", "user-1", state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 30*time.Minute {
		t.Fatalf("expected ttl reset to 30m, got %v", ttl)
	}
}

func TestRedisStore_ExpiryAgesOut(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "shop-1", "user-1", chat.NewSessionState("conv-1", "shop-1", "telegram")); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(31 * time.Minute)

	got, err := store.Get(ctx, "shop-1", "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected session expired")
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "shop-1", "user-1", chat.NewSessionState("conv-1", "shop-1", "telegram")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "shop-1", "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := store.Get(ctx, "shop-1", "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected session gone after delete")
	}
}

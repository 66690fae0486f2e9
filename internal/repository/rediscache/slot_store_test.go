package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"copyflow-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis slot store tests")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestSlotStore_RoundTrip(t *testing.T) {
	rdb := setupRedis(t)
	store := NewSlotStore(rdb, time.Minute)
	ctx := context.Background()
	wf := uuid.New()
	t.Cleanup(func() { rdb.Del(ctx, workflowKey(wf)) })

	slot := &entity.WorkflowSlot{WorkflowId: wf, Name: "hasGeneratedCopy", Scope: "session", Value: "true"}
	require.NoError(t, store.Put(ctx, slot))
	assert.NotEqual(t, uuid.Nil, slot.Id)
	assert.Nil(t, slot.UpdatedAt)

	replaced := &entity.WorkflowSlot{WorkflowId: wf, Name: "hasGeneratedCopy", Scope: "session", Value: "false"}
	require.NoError(t, store.Put(ctx, replaced))
	assert.Equal(t, slot.Id, replaced.Id)
	assert.True(t, slot.CreatedAt.Equal(replaced.CreatedAt))
	require.NotNil(t, replaced.UpdatedAt)

	got, err := store.Get(ctx, wf, "hasGeneratedCopy")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "false", got.Value)

	ttl := rdb.TTL(ctx, workflowKey(wf)).Val()
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, wf, "hasGeneratedCopy"))
	got, err = store.Get(ctx, wf, "hasGeneratedCopy")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSlotStore_ListSorted(t *testing.T) {
	rdb := setupRedis(t)
	store := NewSlotStore(rdb, time.Minute)
	ctx := context.Background()
	wf := uuid.New()
	t.Cleanup(func() { rdb.Del(ctx, workflowKey(wf)) })

	for _, name := range []string{"generatedCopyForDesign", "docxCopyText"} {
		require.NoError(t, store.Put(ctx, &entity.WorkflowSlot{WorkflowId: wf, Name: name, Scope: "session", Value: "v"}))
	}

	slots, err := store.List(ctx, wf)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "docxCopyText", slots[0].Name)
	assert.Equal(t, wf, slots[1].WorkflowId)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"copyflow-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SlotStore {
	store, err := Open(filepath.Join(t.TempDir(), DefaultDBName))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSlotStore_PutKeepsCreatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	wf := uuid.New()

	created := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return created }

	first := &entity.WorkflowSlot{WorkflowId: wf, Name: "confirmedCopy", Scope: "durable", Value: "v1"}
	require.NoError(t, store.Put(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.Id)
	assert.Nil(t, first.UpdatedAt)
	assert.Equal(t, created.UnixMilli(), first.CreatedAt.UnixMilli())

	store.now = func() time.Time { return created.Add(time.Minute) }
	second := &entity.WorkflowSlot{WorkflowId: wf, Name: "confirmedCopy", Scope: "durable", Value: "v2"}
	require.NoError(t, store.Put(ctx, second))

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "v2", second.Value)
	assert.Equal(t, created.UnixMilli(), second.CreatedAt.UnixMilli())
	require.NotNil(t, second.UpdatedAt)
	assert.Equal(t, created.Add(time.Minute).UnixMilli(), second.UpdatedAt.UnixMilli())
}

func TestSlotStore_GetAbsent(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Get(context.Background(), uuid.New(), "savedCopy")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSlotStore_ListAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	wf := uuid.New()
	other := uuid.New()

	for _, name := range []string{"originalBriefing", "confirmedCopy", "savedCopy"} {
		require.NoError(t, store.Put(ctx, &entity.WorkflowSlot{WorkflowId: wf, Name: name, Scope: "durable", Value: name}))
	}
	require.NoError(t, store.Put(ctx, &entity.WorkflowSlot{WorkflowId: other, Name: "confirmedCopy", Scope: "durable", Value: "x"}))

	slots, err := store.List(ctx, wf)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "confirmedCopy", slots[0].Name)

	require.NoError(t, store.Delete(ctx, wf, "originalBriefing", "confirmedCopy"))
	slots, err = store.List(ctx, wf)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "savedCopy", slots[0].Name)

	kept, err := store.Get(ctx, other, "confirmedCopy")
	require.NoError(t, err)
	require.NotNil(t, kept)

	ids, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{wf, other}, ids)
}

func TestSlotStore_DeleteNothing(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), uuid.New()))
}

func TestSlotStore_PutAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	wf := uuid.New()

	require.NoError(t, store.PutAll(ctx, []*entity.WorkflowSlot{
		{WorkflowId: wf, Name: "confirmedCopy", Scope: "durable", Value: "copy"},
		{WorkflowId: wf, Name: "docxCopyText", Scope: "durable", Value: "copy"},
	}))

	slots, err := store.List(ctx, wf)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "confirmedCopy", slots[0].Name)

	ids, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{wf}, ids)
}

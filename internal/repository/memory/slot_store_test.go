package memory

import (
	"context"
	"testing"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotStore_PutGet(t *testing.T) {
	store := NewSlotStore(time.Minute)
	ctx := context.Background()
	wf := uuid.New()

	slot := &entity.WorkflowSlot{WorkflowId: wf, Name: "docxCopyText", Scope: "session", Value: "hello"}
	require.NoError(t, store.Put(ctx, slot))
	assert.NotEqual(t, uuid.Nil, slot.Id)
	assert.False(t, slot.CreatedAt.IsZero())
	assert.Nil(t, slot.UpdatedAt)

	again := &entity.WorkflowSlot{WorkflowId: wf, Name: "docxCopyText", Scope: "session", Value: "bye"}
	require.NoError(t, store.Put(ctx, again))
	assert.Equal(t, slot.Id, again.Id)
	assert.Equal(t, slot.CreatedAt, again.CreatedAt)
	assert.NotNil(t, again.UpdatedAt)

	got, err := store.Get(ctx, wf, "docxCopyText")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bye", got.Value)

	missing, err := store.Get(ctx, uuid.New(), "docxCopyText")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSlotStore_ListIsScopedToWorkflow(t *testing.T) {
	store := NewSlotStore(time.Minute)
	ctx := context.Background()
	wf := uuid.New()

	require.NoError(t, store.Put(ctx, &entity.WorkflowSlot{WorkflowId: wf, Name: "hasGeneratedCopy", Value: "true"}))
	require.NoError(t, store.Put(ctx, &entity.WorkflowSlot{WorkflowId: wf, Name: "generatedCopyForDesign", Value: "copy"}))
	require.NoError(t, store.Put(ctx, &entity.WorkflowSlot{WorkflowId: uuid.New(), Name: "hasGeneratedCopy", Value: "true"}))

	slots, err := store.List(ctx, wf)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "generatedCopyForDesign", slots[0].Name)
	assert.Equal(t, "hasGeneratedCopy", slots[1].Name)

	require.NoError(t, store.Delete(ctx, wf, "hasGeneratedCopy", "generatedCopyForDesign"))
	slots, err = store.List(ctx, wf)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestPageSessionRepository_GetOrCreate(t *testing.T) {
	repo := NewPageSessionRepository(time.Minute)
	wf := uuid.New()

	_, found := repo.Get(wf, "briefing")
	assert.False(t, found)

	first := repo.GetOrCreate(wf, "briefing")
	second := repo.GetOrCreate(wf, "briefing")
	assert.Same(t, first, second)
	assert.Equal(t, workflow.StageEmpty, first.Snapshot().Stage)

	other := repo.GetOrCreate(wf, "design")
	assert.NotSame(t, first, other)

	repo.Delete(wf, "briefing")
	_, found = repo.Get(wf, "briefing")
	assert.False(t, found)

	replacement := workflow.NewPageSession(wf, "briefing")
	repo.Save(replacement)
	got, found := repo.Get(wf, "briefing")
	require.True(t, found)
	assert.Same(t, replacement, got)
}

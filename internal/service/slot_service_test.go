package service

import (
	"context"
	"testing"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/repository/memory"
	"copyflow-be/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemorySlotService() (ISlotService, *memory.SlotStore, *memory.SlotStore) {
	durable := memory.NewSlotStore(0)
	session := memory.NewSlotStore(time.Hour)
	return NewSlotService(durable, session), durable, session
}

func TestSlotService_SetRoutesByScope(t *testing.T) {
	ctx := context.Background()
	svc, durable, session := newMemorySlotService()
	wf := uuid.New()

	_, err := svc.Set(ctx, wf, "", workflow.SlotConfirmedCopy, "copy")
	require.NoError(t, err)
	_, err = svc.Set(ctx, wf, workflow.ScopeSession, workflow.SlotHasGeneratedCopy, "true")
	require.NoError(t, err)

	d, err := durable.Get(ctx, wf, workflow.SlotConfirmedCopy)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "durable", d.Scope)

	s, err := session.Get(ctx, wf, workflow.SlotHasGeneratedCopy)
	require.NoError(t, err)
	require.NotNil(t, s)

	missing, err := durable.Get(ctx, wf, workflow.SlotHasGeneratedCopy)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSlotService_SetRejects(t *testing.T) {
	svc, _, _ := newMemorySlotService()

	tests := []struct {
		name  string
		slot  string
		scope workflow.Scope
		want  error
	}{
		{"unknown slot", "noSuchSlot", "", workflow.ErrUnknownSlot},
		{"wrong scope", workflow.SlotConfirmedCopy, workflow.ScopeSession, workflow.ErrScopeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Set(context.Background(), uuid.New(), tt.scope, tt.slot, "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSlotService_GetClearAndValues(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMemorySlotService()
	wf := uuid.New()

	require.NoError(t, svc.Apply(ctx, wf, []workflow.SlotWrite{
		{Slot: workflow.SlotConfirmedCopy, Scope: workflow.ScopeDurable, Value: "copy"},
		{Slot: workflow.SlotDocxCopyText, Scope: workflow.ScopeSession, Value: "docx"},
	}))

	got, found, err := svc.Get(ctx, wf, workflow.SlotDocxCopyText)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "docx", got.Value)

	values, err := svc.Values(ctx, wf, workflow.SlotConfirmedCopy, workflow.SlotDocxCopyText, workflow.SlotSavedCopy)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		workflow.SlotConfirmedCopy: "copy",
		workflow.SlotDocxCopyText:  "docx",
	}, values)

	list, err := svc.List(ctx, wf)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.ClearMany(ctx, wf, workflow.SlotConfirmedCopy, workflow.SlotDocxCopyText))
	_, found, err = svc.Get(ctx, wf, workflow.SlotConfirmedCopy)
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, svc.Clear(ctx, wf, "bogus"), workflow.ErrUnknownSlot)
}

// batchingStore records PutAll calls on top of a memory store.
type batchingStore struct {
	*memory.SlotStore
	batches [][]string
}

func (b *batchingStore) PutAll(ctx context.Context, slots []*entity.WorkflowSlot) error {
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		if err := b.Put(ctx, slot); err != nil {
			return err
		}
		names = append(names, slot.Name)
	}
	b.batches = append(b.batches, names)
	return nil
}

func TestSlotService_Apply(t *testing.T) {
	ctx := context.Background()
	wf := uuid.New()
	durable := &batchingStore{SlotStore: memory.NewSlotStore(0)}
	session := memory.NewSlotStore(time.Hour)
	svc := NewSlotService(durable, session)

	err := svc.Apply(ctx, wf, []workflow.SlotWrite{
		{Slot: workflow.SlotConfirmedCopy, Value: "copy"},
		{Slot: "notASlot", Value: "x"},
	})
	require.Error(t, err)
	got, err := durable.Get(ctx, wf, workflow.SlotConfirmedCopy)
	require.NoError(t, err)
	assert.Nil(t, got, "nothing is written when one write is invalid")

	require.NoError(t, svc.Apply(ctx, wf, []workflow.SlotWrite{
		{Slot: workflow.SlotConfirmedCopy, Value: "copy"},
		{Slot: workflow.SlotOriginalBriefing, Value: "brief"},
		{Slot: workflow.SlotDocxCopyText, Value: "copy"},
	}))
	require.Len(t, durable.batches, 1)
	assert.ElementsMatch(t, []string{workflow.SlotConfirmedCopy, workflow.SlotOriginalBriefing}, durable.batches[0])

	docx, err := session.Get(ctx, wf, workflow.SlotDocxCopyText)
	require.NoError(t, err)
	require.NotNil(t, docx)
	assert.Equal(t, "copy", docx.Value)
}

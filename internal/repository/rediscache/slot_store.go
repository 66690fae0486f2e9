// Package rediscache stores session-scope slots in Redis so every server
// instance behind a load balancer sees the same workflow session.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "copyflow:slots:"

// SlotStore keeps one hash per workflow: field = slot name, value = JSON slot.
// The whole hash expires ttl after the last write.
type SlotStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

var _ contract.SlotStore = &SlotStore{}

func NewSlotStore(rdb *redis.Client, ttl time.Duration) *SlotStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SlotStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func workflowKey(workflowId uuid.UUID) string {
	return keyPrefix + workflowId.String()
}

type storedSlot struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Scope     string     `json:"scope"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (s storedSlot) toEntity(workflowId uuid.UUID) *entity.WorkflowSlot {
	return &entity.WorkflowSlot{
		Id:         s.Id,
		WorkflowId: workflowId,
		Name:       s.Name,
		Scope:      s.Scope,
		Value:      s.Value,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (r *SlotStore) Put(ctx context.Context, slot *entity.WorkflowSlot) error {
	prev, err := r.Get(ctx, slot.WorkflowId, slot.Name)
	if err != nil {
		return err
	}

	now := r.now()
	stored := storedSlot{
		Id:        slot.Id,
		Name:      slot.Name,
		Scope:     slot.Scope,
		Value:     slot.Value,
		CreatedAt: now,
	}
	if stored.Id == uuid.Nil {
		stored.Id = uuid.New()
	}
	if prev != nil {
		stored.Id = prev.Id
		stored.CreatedAt = prev.CreatedAt
		stored.UpdatedAt = &now
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", slot.Name, err)
	}

	key := workflowKey(slot.WorkflowId)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, slot.Name, data)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put slot %s: %w", slot.Name, err)
	}

	*slot = *stored.toEntity(slot.WorkflowId)
	return nil
}

func (r *SlotStore) Get(ctx context.Context, workflowId uuid.UUID, name string) (*entity.WorkflowSlot, error) {
	raw, err := r.rdb.HGet(ctx, workflowKey(workflowId), name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get slot %s: %w", name, err)
	}

	var stored storedSlot
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", name, err)
	}
	return stored.toEntity(workflowId), nil
}

func (r *SlotStore) List(ctx context.Context, workflowId uuid.UUID) ([]*entity.WorkflowSlot, error) {
	all, err := r.rdb.HGetAll(ctx, workflowKey(workflowId)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list slots: %w", err)
	}

	result := make([]*entity.WorkflowSlot, 0, len(all))
	for name, raw := range all {
		var stored storedSlot
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return nil, fmt.Errorf("decode slot %s: %w", name, err)
		}
		result = append(result, stored.toEntity(workflowId))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *SlotStore) Delete(ctx context.Context, workflowId uuid.UUID, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if err := r.rdb.HDel(ctx, workflowKey(workflowId), names...).Err(); err != nil {
		return fmt.Errorf("redis delete slots: %w", err)
	}
	return nil
}

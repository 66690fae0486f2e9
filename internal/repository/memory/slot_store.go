package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SlotStore keeps session-scope slots in process memory. Entries expire after
// the session TTL unless they are written again.
type SlotStore struct {
	cache *cache.Cache
	now   func() time.Time
}

var _ contract.SlotStore = &SlotStore{}

func NewSlotStore(ttl time.Duration) *SlotStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SlotStore{
		cache: cache.New(ttl, 10*time.Minute),
		now:   time.Now,
	}
}

func slotKey(workflowId uuid.UUID, name string) string {
	return workflowId.String() + ":" + name
}

func (s *SlotStore) Put(_ context.Context, slot *entity.WorkflowSlot) error {
	key := slotKey(slot.WorkflowId, slot.Name)
	now := s.now()

	stored := *slot
	if stored.Id == uuid.Nil {
		stored.Id = uuid.New()
	}
	if x, found := s.cache.Get(key); found {
		prev := x.(entity.WorkflowSlot)
		stored.Id = prev.Id
		stored.CreatedAt = prev.CreatedAt
		stored.UpdatedAt = &now
	} else {
		stored.CreatedAt = now
		stored.UpdatedAt = nil
	}

	s.cache.Set(key, stored, cache.DefaultExpiration)
	*slot = stored
	return nil
}

func (s *SlotStore) Get(_ context.Context, workflowId uuid.UUID, name string) (*entity.WorkflowSlot, error) {
	x, found := s.cache.Get(slotKey(workflowId, name))
	if !found {
		return nil, nil
	}
	slot := x.(entity.WorkflowSlot)
	return &slot, nil
}

func (s *SlotStore) List(_ context.Context, workflowId uuid.UUID) ([]*entity.WorkflowSlot, error) {
	prefix := workflowId.String() + ":"
	result := make([]*entity.WorkflowSlot, 0)
	for key, item := range s.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		slot := item.Object.(entity.WorkflowSlot)
		result = append(result, &slot)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *SlotStore) Delete(_ context.Context, workflowId uuid.UUID, names ...string) error {
	for _, name := range names {
		s.cache.Delete(slotKey(workflowId, name))
	}
	return nil
}

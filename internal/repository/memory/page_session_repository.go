package memory

import (
	"time"

	"copyflow-be/internal/workflow"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PageSessionRepository holds the live page sessions of every workflow.
// A page session is created on first access and dropped after the TTL.
type PageSessionRepository struct {
	cache *cache.Cache
}

func NewPageSessionRepository(ttl time.Duration) *PageSessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PageSessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func pageKey(workflowId uuid.UUID, page string) string {
	return workflowId.String() + ":" + page
}

func (r *PageSessionRepository) Save(session *workflow.PageSession) {
	r.cache.Set(pageKey(session.WorkflowID, session.Page), session, cache.DefaultExpiration)
}

func (r *PageSessionRepository) Get(workflowId uuid.UUID, page string) (*workflow.PageSession, bool) {
	if x, found := r.cache.Get(pageKey(workflowId, page)); found {
		return x.(*workflow.PageSession), true
	}
	return nil, false
}

// GetOrCreate returns the page session, creating an empty one when absent.
// Access refreshes the expiration.
func (r *PageSessionRepository) GetOrCreate(workflowId uuid.UUID, page string) *workflow.PageSession {
	key := pageKey(workflowId, page)
	if x, found := r.cache.Get(key); found {
		session := x.(*workflow.PageSession)
		r.cache.Set(key, session, cache.DefaultExpiration)
		return session
	}

	session := workflow.NewPageSession(workflowId, page)
	if err := r.cache.Add(key, session, cache.DefaultExpiration); err != nil {
		// lost a race with a concurrent request
		if x, found := r.cache.Get(key); found {
			return x.(*workflow.PageSession)
		}
		r.cache.Set(key, session, cache.DefaultExpiration)
	}
	return session
}

func (r *PageSessionRepository) Delete(workflowId uuid.UUID, page string) {
	r.cache.Delete(pageKey(workflowId, page))
}

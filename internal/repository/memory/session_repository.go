package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/mapper"
	"greentrip-be/internal/model"
	"greentrip-be/internal/repository/contract"
)

// SessionRepository is the in-memory session store used in development and
// tests. Sessions expire after the configured idle timeout. Documents are
// stored in their serialized form so callers never share mutable state with
// the store. A Get after a non-Updated mutation returns the old document,
// matching the durable backend's read-modify-write semantics.
type SessionRepository struct {
	cache  *cache.Cache
	mapper *mapper.SessionMapper
}

func NewSessionRepository(sessionTimeout time.Duration) contract.SessionRepository {
	if sessionTimeout <= 0 {
		sessionTimeout = time.Hour
	}
	return &SessionRepository{
		cache:  cache.New(sessionTimeout, 10*time.Minute),
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.LastActivity = now

	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}
	if err := r.cache.Add(session.Id.String(), m, cache.DefaultExpiration); err != nil {
		return fmt.Errorf("session %s already exists", session.Id)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	x, found := r.cache.Get(id.String())
	if !found {
		return nil, nil
	}
	return r.mapper.ToEntity(x.(*model.Session))
}

func (r *SessionRepository) Update(ctx context.Context, session *entity.Session) error {
	session.LastActivity = time.Now()
	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}
	r.cache.Set(session.Id.String(), m, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/repository/contract"
)

// ISessionManager owns the lifecycle of live session documents. Every chat
// request goes through a full read-modify-write cycle; nothing is cached in
// process, so horizontally scaled instances stay consistent.
type ISessionManager interface {
	Create(ctx context.Context) (*entity.Session, error)
	GetOrCreate(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Clear(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sessionManager struct {
	repo   contract.SessionRepository
	logger logger.ILogger
}

func NewSessionManager(repo contract.SessionRepository, log logger.ILogger) ISessionManager {
	return &sessionManager{repo: repo, logger: log}
}

func (sm *sessionManager) Create(ctx context.Context) (*entity.Session, error) {
	now := time.Now()
	session := &entity.Session{
		Id:           uuid.New(),
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := sm.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	sm.logger.Info("SessionManager", "Session created", map[string]interface{}{
		"session_id": session.Id,
	})
	return session, nil
}

// GetOrCreate returns the stored session or transparently starts a new one
// under the same id. Expired or never-seen ids both land here, so a stale
// client keeps working instead of erroring out.
func (sm *sessionManager) GetOrCreate(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	session, err := sm.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if session != nil {
		return session, nil
	}

	now := time.Now()
	session = &entity.Session{
		Id:           id,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := sm.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("recreate session %s: %w", id, err)
	}

	sm.logger.Info("SessionManager", "Session recreated for unknown id", map[string]interface{}{
		"session_id": id,
	})
	return session, nil
}

func (sm *sessionManager) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	return sm.repo.Get(ctx, id)
}

// Save persists the whole document. Session writes must succeed; callers
// propagate this error to the client instead of replying with stale state.
func (sm *sessionManager) Save(ctx context.Context, session *entity.Session) error {
	session.LastActivity = time.Now()
	if err := sm.repo.Update(ctx, session); err != nil {
		return fmt.Errorf("save session %s: %w", session.Id, err)
	}
	return nil
}

// Clear hard-deletes the session document. The chat UI keeps using the same
// id; the next message recreates a blank session under it via GetOrCreate.
func (sm *sessionManager) Clear(ctx context.Context, id uuid.UUID) error {
	if err := sm.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("clear session %s: %w", id, err)
	}

	sm.logger.Info("SessionManager", "Session cleared", map[string]interface{}{
		"session_id": id,
	})
	return nil
}

func (sm *sessionManager) Delete(ctx context.Context, id uuid.UUID) error {
	return sm.repo.Delete(ctx, id)
}

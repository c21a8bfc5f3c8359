package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/mapper"
	"greentrip-be/internal/model"
	"greentrip-be/internal/repository/contract"
)

// ConversationRepository is the in-memory conversation projection store.
// Conversations never expire; they are the export dataset.
type ConversationRepository struct {
	cache  *cache.Cache
	mapper *mapper.ConversationMapper
}

func NewConversationRepository() contract.ConversationRepository {
	return &ConversationRepository{
		cache:  cache.New(cache.NoExpiration, 0),
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepository) Get(ctx context.Context, sessionId uuid.UUID) (*entity.Conversation, error) {
	x, found := r.cache.Get(sessionId.String())
	if !found {
		return nil, nil
	}
	return r.mapper.ToEntity(x.(*model.Conversation))
}

func (r *ConversationRepository) Save(ctx context.Context, conversation *entity.Conversation) error {
	if x, found := r.cache.Get(conversation.SessionId.String()); found {
		conversation.CreatedAt = x.(*model.Conversation).CreatedAt
	} else if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	conversation.UpdatedAt = time.Now()

	m, err := r.mapper.ToModel(conversation)
	if err != nil {
		return err
	}
	r.cache.Set(conversation.SessionId.String(), m, cache.NoExpiration)
	return nil
}

func (r *ConversationRepository) FindAll(ctx context.Context, limit int) ([]*entity.Conversation, error) {
	items := r.cache.Items()
	conversations := make([]*entity.Conversation, 0, len(items))
	for _, item := range items {
		conv, err := r.mapper.ToEntity(item.Object.(*model.Conversation))
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})

	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}

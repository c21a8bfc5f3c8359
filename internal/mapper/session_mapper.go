package mapper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/model"
	"greentrip-be/pkg/clarification"
)

// turnDocument is the stored shape of one history entry.
type turnDocument struct {
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	Timestamp time.Time           `json:"timestamp"`
	Metadata  entity.TurnMetadata `json:"metadata"`
}

// collectedEntitiesDocument keeps answer maps string-keyed inside the JSON
// document; native int keys exist only in memory.
type collectedEntitiesDocument struct {
	ClarificationAnswers map[string]clarification.Answer `json:"clarification_answers,omitempty"`
}

type sessionDocument struct {
	ConversationHistory        []turnDocument            `json:"conversation_history"`
	CollectedEntities          collectedEntitiesDocument `json:"collected_entities"`
	ClarificationState         *clarification.Document   `json:"clarification_state,omitempty"`
	OriginalClarificationQuery string                    `json:"original_clarification_query,omitempty"`
}

// SessionMapper converts between session entities and their stored documents,
// validating documents on the way in rather than trusting arbitrary keys.
type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToModel(session *entity.Session) (*model.Session, error) {
	doc := sessionDocument{
		ConversationHistory:        turnsToDocuments(session.ConversationHistory),
		OriginalClarificationQuery: session.OriginalClarificationQuery,
	}

	if len(session.CollectedEntities.ClarificationAnswers) > 0 {
		answers := make(map[string]clarification.Answer, len(session.CollectedEntities.ClarificationAnswers))
		for id, a := range session.CollectedEntities.ClarificationAnswers {
			answers[strconv.Itoa(id)] = a
		}
		doc.CollectedEntities.ClarificationAnswers = answers
	}

	if session.ClarificationState != nil {
		stateDoc := session.ClarificationState.Document()
		doc.ClarificationState = &stateDoc
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal session document: %w", err)
	}

	return &model.Session{
		Id:                    session.Id,
		Document:              raw,
		ClarificationComplete: session.ClarificationComplete,
		CreatedAt:             session.CreatedAt,
		LastActivity:          session.LastActivity,
	}, nil
}

func (m *SessionMapper) ToEntity(stored *model.Session) (*entity.Session, error) {
	var doc sessionDocument
	if err := json.Unmarshal(stored.Document, &doc); err != nil {
		return nil, fmt.Errorf("session %s: invalid document: %w", stored.Id, err)
	}

	session := &entity.Session{
		Id:                         stored.Id,
		ConversationHistory:        documentsToTurns(doc.ConversationHistory),
		ClarificationComplete:      stored.ClarificationComplete,
		OriginalClarificationQuery: doc.OriginalClarificationQuery,
		CreatedAt:                  stored.CreatedAt,
		LastActivity:               stored.LastActivity,
	}

	if len(doc.CollectedEntities.ClarificationAnswers) > 0 {
		answers := make(map[int]clarification.Answer, len(doc.CollectedEntities.ClarificationAnswers))
		for key, a := range doc.CollectedEntities.ClarificationAnswers {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("session %s: non-numeric answer key %q", stored.Id, key)
			}
			answers[id] = a
		}
		session.CollectedEntities.ClarificationAnswers = answers
	}

	if doc.ClarificationState != nil {
		state, err := clarification.FromDocument(*doc.ClarificationState)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", stored.Id, err)
		}
		session.ClarificationState = state
	}

	return session, nil
}

func turnsToDocuments(turns []entity.ConversationTurn) []turnDocument {
	docs := make([]turnDocument, len(turns))
	for i, t := range turns {
		docs[i] = turnDocument{
			Role:      t.Role,
			Content:   t.Content,
			Timestamp: t.Timestamp,
			Metadata:  t.Metadata,
		}
	}
	return docs
}

func documentsToTurns(docs []turnDocument) []entity.ConversationTurn {
	turns := make([]entity.ConversationTurn, len(docs))
	for i, d := range docs {
		turns[i] = entity.ConversationTurn{
			Role:      d.Role,
			Content:   d.Content,
			Timestamp: d.Timestamp,
			Metadata:  d.Metadata,
		}
	}
	return turns
}

package entity

import (
	"time"

	"github.com/google/uuid"

	"greentrip-be/pkg/clarification"
)

// ConversationTurn is one append-only entry in a session's history.
type ConversationTurn struct {
	Role      string
	Content   string
	Timestamp time.Time
	Metadata  TurnMetadata
}

// TurnMetadata tags turns so clarification episodes can be rebuilt later.
type TurnMetadata struct {
	Type           string `json:"type,omitempty"`
	QuestionId     *int   `json:"question_id,omitempty"`
	Category       string `json:"category,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
}

// CollectedEntities accumulates durable facts derived during a session.
// ClarificationAnswers outlives the live clarification state once a flow
// completes.
type CollectedEntities struct {
	ClarificationAnswers map[int]clarification.Answer
}

// Session is the store-backed record of one user's ongoing interaction. The
// orchestrator only ever holds a transient copy per request; every mutation
// is re-persisted through the session repository.
type Session struct {
	Id                         uuid.UUID
	ConversationHistory        []ConversationTurn
	CollectedEntities          CollectedEntities
	ClarificationState         *clarification.State
	ClarificationComplete      bool
	OriginalClarificationQuery string
	CreatedAt                  time.Time
	LastActivity               time.Time
}

// AppendTurn adds a history entry. History is append-only for the lifetime of
// the session.
func (s *Session) AppendTurn(role, content string, metadata TurnMetadata) {
	s.ConversationHistory = append(s.ConversationHistory, ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
}

// RecordClarificationAnswer folds an answer snapshot into the durable entity map.
func (s *Session) RecordClarificationAnswer(questionId int, answer clarification.Answer) {
	if s.CollectedEntities.ClarificationAnswers == nil {
		s.CollectedEntities.ClarificationAnswers = make(map[int]clarification.Answer)
	}
	s.CollectedEntities.ClarificationAnswers[questionId] = answer
}

// HasActiveClarification reports whether an incomplete clarification flow is
// attached to this session.
func (s *Session) HasActiveClarification() bool {
	return s.ClarificationState != nil && !s.ClarificationState.IsComplete()
}

package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"greentrip-be/pkg/agents"
	"greentrip-be/pkg/clarification"
)

// ClarificationData is the normalized export projection of one clarification
// episode, in the same shape the agents consume.
type ClarificationData struct {
	Query                 string                   `json:"query"`
	ClarifyingQuestions   []clarification.Question `json:"clarifying_questions"`
	ClarificationComplete bool                     `json:"clarification_complete"`
}

// Feedback is the user's rating of the final recommendation.
type Feedback struct {
	Rating       int       `json:"rating"`
	FeedbackText *string   `json:"feedback_text,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	FeedbackType string    `json:"feedback_type"`
}

// Conversation is the training/analytics projection of a session: its full
// history, the reconstructed clarification data, user feedback and the final
// pipeline result.
type Conversation struct {
	SessionId           uuid.UUID
	ConversationHistory []ConversationTurn
	ClarificationData   *ClarificationData
	Feedback            *Feedback
	PipelineResult      *agents.CFEOutput
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BuildClarificationData derives the export projection from a session. While
// a live clarification state exists it is used directly; after completion the
// episode is rebuilt from the collected answers, ordered by question id.
func BuildClarificationData(session *Session) *ClarificationData {
	if session.ClarificationState != nil {
		return &ClarificationData{
			Query:                 session.ClarificationState.OriginalQuery(),
			ClarifyingQuestions:   session.ClarificationState.Questions(),
			ClarificationComplete: session.ClarificationComplete,
		}
	}

	if !session.ClarificationComplete || len(session.CollectedEntities.ClarificationAnswers) == 0 {
		return nil
	}

	ids := make([]int, 0, len(session.CollectedEntities.ClarificationAnswers))
	for id := range session.CollectedEntities.ClarificationAnswers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	questions := make([]clarification.Question, 0, len(ids))
	for _, id := range ids {
		snapshot := session.CollectedEntities.ClarificationAnswers[id]
		answer := snapshot.Answer
		questions = append(questions, clarification.Question{
			Id:       id,
			Category: snapshot.Category,
			Text:     snapshot.Question,
			Answer:   &answer,
		})
	}

	return &ClarificationData{
		Query:                 session.OriginalClarificationQuery,
		ClarifyingQuestions:   questions,
		ClarificationComplete: true,
	}
}

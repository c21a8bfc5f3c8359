package dto

import (
	"time"

	"github.com/google/uuid"

	"greentrip-be/pkg/agents"
	"greentrip-be/pkg/clarification"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse is the single outbound shape rendered by the chat UI: a
// clarifying question, a completion, an error, an out-of-scope notice or a
// plain pass-through message.
type ChatResponse struct {
	Type            string                  `json:"type"`
	Text            string                  `json:"text"`
	QuestionId      *int                    `json:"question_id,omitempty"`
	Progress        *clarification.Progress `json:"progress,omitempty"`
	Summary         *clarification.Summary  `json:"summary,omitempty"`
	TriggerPipeline bool                    `json:"trigger_pipeline,omitempty"`
	Metadata        map[string]interface{}  `json:"metadata,omitempty"`
}

type ActionRequest struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

type FeedbackRequest struct {
	Rating       int     `json:"rating" validate:"required,min=1,max=5"`
	FeedbackText *string `json:"feedback_text,omitempty"`
}

type ConversationTurnResponse struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type GetHistoryResponse struct {
	SessionId           uuid.UUID                  `json:"session_id"`
	ConversationHistory []ConversationTurnResponse `json:"conversation_history"`
}

// RunPipelineMessage is the bus payload that hands a completed clarification
// session to the background pipeline worker.
type RunPipelineMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}

// PipelineResultResponse is pushed to websocket clients when the
// recommendation pipeline finishes for a session.
type PipelineResultResponse struct {
	Type      string            `json:"type"`
	SessionId uuid.UUID         `json:"session_id"`
	Result    *agents.CFEOutput `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

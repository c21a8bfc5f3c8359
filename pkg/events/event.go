package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the conversation layer.
const (
	TypeSessionStarted        = "SESSION_STARTED"
	TypeClarificationStarted  = "CLARIFICATION_STARTED"
	TypeClarificationComplete = "CLARIFICATION_COMPLETED"
	TypePipelineCompleted     = "PIPELINE_COMPLETED"
	TypeFeedbackReceived      = "FEEDBACK_RECEIVED"
)

// NewSessionStarted marks the creation of a chat session.
func NewSessionStarted(sessionId string) Event {
	return BaseEvent{
		Type:       TypeSessionStarted,
		Data:       map[string]interface{}{"session_id": sessionId},
		OccurredAt: time.Now(),
	}
}

// NewClarificationStarted marks the start of a clarification flow.
func NewClarificationStarted(sessionId, query string, totalQuestions int) Event {
	return BaseEvent{
		Type: TypeClarificationStarted,
		Data: map[string]interface{}{
			"session_id":      sessionId,
			"query":           query,
			"total_questions": totalQuestions,
		},
		OccurredAt: time.Now(),
	}
}

// NewClarificationCompleted marks a fully answered clarification flow.
func NewClarificationCompleted(sessionId string, answered int) Event {
	return BaseEvent{
		Type: TypeClarificationComplete,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"answered":   answered,
		},
		OccurredAt: time.Now(),
	}
}

// NewPipelineCompleted marks a finished recommendation pipeline run.
func NewPipelineCompleted(sessionId string, success bool, durationSeconds float64) Event {
	return BaseEvent{
		Type: TypePipelineCompleted,
		Data: map[string]interface{}{
			"session_id":       sessionId,
			"success":          success,
			"duration_seconds": durationSeconds,
		},
		OccurredAt: time.Now(),
	}
}

// NewFeedbackReceived marks user feedback on a recommendation.
func NewFeedbackReceived(sessionId string, rating int) Event {
	return BaseEvent{
		Type: TypeFeedbackReceived,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"rating":     rating,
		},
		OccurredAt: time.Now(),
	}
}

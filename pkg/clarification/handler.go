package clarification

import (
	"context"
	"errors"
	"fmt"

	"greentrip-be/internal/pkg/logger"
	"greentrip-be/pkg/agents"
)

// ErrOutOfScope marks a query the generator declined to clarify. It is a
// terminal classification, not a transport failure, and callers must reset
// the session rather than retry.
var ErrOutOfScope = errors.New("query is out of scope")

// Event type tags consumed by the chat UI layer.
const (
	EventQuestion   = "clarification_question"
	EventComplete   = "clarification_complete"
	EventError      = "clarification_error"
	EventOutOfScope = "out_of_scope"
)

const (
	completionText = "✅ **All questions answered!**\n\n" +
		"Thank you for providing that information. " +
		"Let me now find the best recommendations for you based on your preferences."

	outOfScopeText = "I'm sorry, but this query is beyond the scope of European city recommendation. " +
		"I can only help you find and recommend European cities based on your preferences.\n\n" +
		"Please ask a new query about European cities to start again."

	errorText = "⚠️ I encountered an error while processing your request.\n\n" +
		"Please try again or rephrase your question."
)

// Event is the UI-facing shape produced by the clarification flow.
type Event struct {
	Type            string                 `json:"type"`
	Text            string                 `json:"text"`
	QuestionId      *int                   `json:"question_id,omitempty"`
	Progress        *Progress              `json:"progress,omitempty"`
	Summary         *Summary               `json:"summary,omitempty"`
	TriggerPipeline bool                   `json:"trigger_pipeline,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// QuestionGenerator is the external collaborator that produces the full
// clarifying-question set for a query.
type QuestionGenerator interface {
	GenerateClarifyingQuestions(ctx context.Context, userInput string) (*agents.CQOutput, error)
}

// Handler drives question generation and formats clarification state into
// UI-facing events. It holds no per-session state.
type Handler struct {
	generator QuestionGenerator
	logger    logger.ILogger
}

func NewHandler(generator QuestionGenerator, log logger.ILogger) *Handler {
	return &Handler{generator: generator, logger: log}
}

// GenerateQuestions calls the generator and wraps its output into a fresh
// State. An empty question set or the id==-1 sentinel yields ErrOutOfScope;
// transport and parse failures come back as ordinary errors.
func (h *Handler) GenerateQuestions(ctx context.Context, query string) (*State, error) {
	result, err := h.generator.GenerateClarifyingQuestions(ctx, query)
	if err != nil {
		h.logger.Error("Clarification", "Question generation failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	if result == nil || len(result.ClarifyingQuestions) == 0 ||
		(len(result.ClarifyingQuestions) == 1 && result.ClarifyingQuestions[0].Id == agents.OutOfScopeQuestionId) {
		h.logger.Info("Clarification", "Query classified as out of scope", map[string]interface{}{
			"query": query,
		})
		return nil, ErrOutOfScope
	}

	questions := make([]Question, len(result.ClarifyingQuestions))
	for i, q := range result.ClarifyingQuestions {
		questions[i] = Question{
			Id:       q.Id,
			Category: q.Category,
			Text:     q.Question,
		}
	}

	originalQuery := result.Query
	if originalQuery == "" {
		originalQuery = query
	}

	return NewState(originalQuery, questions), nil
}

// QuestionEvent formats the question at the cursor for the UI. When the state
// is already complete it falls through to the completion event.
func (h *Handler) QuestionEvent(state *State) Event {
	current := state.CurrentQuestion()
	if current == nil {
		return h.CompletionEvent(state)
	}

	progress := state.Progress()
	questionId := current.Id

	return Event{
		Type:       EventQuestion,
		Text:       current.Text,
		QuestionId: &questionId,
		Progress:   &progress,
		Metadata: map[string]interface{}{
			"clarification_active": true,
		},
	}
}

// CompletionEvent formats the all-answered message. TriggerPipeline tells the
// caller every answer is persisted and the recommendation pipeline may run.
func (h *Handler) CompletionEvent(state *State) Event {
	summary := state.Summary()
	return Event{
		Type:            EventComplete,
		Text:            completionText,
		Summary:         &summary,
		TriggerPipeline: true,
		Metadata: map[string]interface{}{
			"clarification_active":   false,
			"clarification_complete": true,
		},
	}
}

// ErrorEvent formats the fixed user-facing failure message. The underlying
// cause never reaches the client; it belongs in the server logs.
func (h *Handler) ErrorEvent() Event {
	return Event{
		Type: EventError,
		Text: errorText,
		Metadata: map[string]interface{}{
			"clarification_active": false,
			"error":                true,
		},
	}
}

// OutOfScopeEvent tells the caller to discard the session and start fresh.
func (h *Handler) OutOfScopeEvent() Event {
	return Event{
		Type: EventOutOfScope,
		Text: outOfScopeText,
		Metadata: map[string]interface{}{
			"clarification_active": false,
			"out_of_scope":         true,
			"reset_session":        true,
		},
	}
}

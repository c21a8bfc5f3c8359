package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"greentrip-be/internal/constant"
	"greentrip-be/internal/dto"
	"greentrip-be/internal/entity"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/repository/contract"
	"greentrip-be/pkg/clarification"
	"greentrip-be/pkg/events"
	pktNats "greentrip-be/pkg/nats"
)

// ErrSessionNotFound marks lookups of sessions the store has never seen or
// has already expired. Read endpoints surface it as a 404.
var ErrSessionNotFound = errors.New("session not found")

// IConversationService is the chat orchestrator. It decides, per incoming
// message, whether to start a clarification flow, consume an answer, or pass
// the message through, and keeps the session document in sync after every
// transition.
type IConversationService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	ProcessMessage(ctx context.Context, sessionId uuid.UUID, message string) (*dto.ChatResponse, error)
	HandleAction(ctx context.Context, sessionId uuid.UUID, req *dto.ActionRequest) (*dto.ChatResponse, error)
	GetClarificationSummary(ctx context.Context, sessionId uuid.UUID) (*clarification.Summary, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetHistoryResponse, error)
	SaveFeedback(ctx context.Context, sessionId uuid.UUID, req *dto.FeedbackRequest) error
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type conversationService struct {
	sessionManager   ISessionManager
	conversationRepo contract.ConversationRepository
	handler          *clarification.Handler
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewConversationService(
	sessionManager ISessionManager,
	conversationRepo contract.ConversationRepository,
	handler *clarification.Handler,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		sessionManager:   sessionManager,
		conversationRepo: conversationRepo,
		handler:          handler,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (cs *conversationService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session, err := cs.sessionManager.Create(ctx)
	if err != nil {
		return nil, err
	}

	cs.publishEvent(ctx, events.NewSessionStarted(session.Id.String()))

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

// ProcessMessage runs one turn of the conversation. Exactly one transition
// fires per call:
//
//  1. a completed flow is reset so the message is treated as a fresh query
//  2. an active flow consumes the message as the answer to its cursor question
//  3. a destination-like query starts a new flow
//  4. anything else passes through
//
// The session document is saved before the response is returned; a failed
// save fails the request rather than replying with state the store never saw.
func (cs *conversationService) ProcessMessage(ctx context.Context, sessionId uuid.UUID, message string) (*dto.ChatResponse, error) {
	session, err := cs.sessionManager.GetOrCreate(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	// The completion flag survives only until the next message arrives.
	// That message is a brand-new query, so the old episode's answers are
	// dropped (they already live in the conversation projection).
	if session.ClarificationComplete {
		cs.resetClarification(session)
	}

	var event clarification.Event
	persist := true
	switch {
	case session.HasActiveClarification():
		event = cs.consumeAnswer(ctx, session, message)
	case cs.shouldTriggerClarification(message):
		event, persist = cs.startClarification(ctx, session, message)
	default:
		session.AppendTurn(constant.ChatRoleUser, message, entity.TurnMetadata{})
		event = clarification.Event{Type: "message", Text: constant.PassThroughText}
		session.AppendTurn(constant.ChatRoleAssistant, event.Text, entity.TurnMetadata{})
	}

	// A failed step must leave the stored session exactly as it was, so the
	// next message retries cleanly.
	if !persist {
		return eventToResponse(event), nil
	}

	if err := cs.sessionManager.Save(ctx, session); err != nil {
		return nil, err
	}

	cs.projectConversation(ctx, session)

	return eventToResponse(event), nil
}

// consumeAnswer records the message as the answer to the question at the
// cursor and either asks the next question or completes the flow.
func (cs *conversationService) consumeAnswer(ctx context.Context, session *entity.Session, message string) clarification.Event {
	state := session.ClarificationState
	current := state.CurrentQuestion()
	if current == nil {
		// The flow claims to be active but has no pending question.
		cs.logger.Error("Conversation", "Clarification state has no current question", map[string]interface{}{
			"session_id": session.Id,
		})
		return cs.handler.ErrorEvent()
	}

	questionId := current.Id
	session.AppendTurn(constant.ChatRoleUser, message, entity.TurnMetadata{
		Type:       constant.TurnTypeClarificationAnswer,
		QuestionId: &questionId,
		Category:   current.Category,
	})

	state.AddAnswer(current.Id, message)
	session.RecordClarificationAnswer(current.Id, state.Answers()[current.Id])

	if state.IsComplete() {
		session.ClarificationComplete = true
		event := cs.handler.CompletionEvent(state)
		session.AppendTurn(constant.ChatRoleAssistant, event.Text, entity.TurnMetadata{})

		// The flow is over. Every answer already lives in CollectedEntities,
		// so the live state is dropped before the document is persisted.
		session.ClarificationState = nil

		cs.publishEvent(ctx, events.NewClarificationCompleted(
			session.Id.String(), len(state.Answers()),
		))
		return event
	}

	event := cs.handler.QuestionEvent(state)
	next := state.CurrentQuestion()
	nextId := next.Id
	session.AppendTurn(constant.ChatRoleAssistant, event.Text, entity.TurnMetadata{
		Type:           constant.TurnTypeClarificationQuestion,
		QuestionId:     &nextId,
		Category:       next.Category,
		TotalQuestions: len(state.Questions()),
	})
	return event
}

// startClarification asks the generator for the question set. Out-of-scope
// queries leave no clarification state behind; transport failures reply with
// the generic error text and persist nothing. The second return reports
// whether the session was mutated and needs saving.
func (cs *conversationService) startClarification(ctx context.Context, session *entity.Session, message string) (clarification.Event, bool) {
	state, err := cs.handler.GenerateQuestions(ctx, message)
	if errors.Is(err, clarification.ErrOutOfScope) {
		session.AppendTurn(constant.ChatRoleUser, message, entity.TurnMetadata{})
		event := cs.handler.OutOfScopeEvent()
		session.AppendTurn(constant.ChatRoleAssistant, event.Text, entity.TurnMetadata{})
		cs.resetClarification(session)
		return event, true
	}
	if err != nil {
		// The cause is already in the logs; the user gets the fixed text and
		// the stored session stays untouched.
		return cs.handler.ErrorEvent(), false
	}

	session.ClarificationState = state
	session.OriginalClarificationQuery = state.OriginalQuery()
	session.AppendTurn(constant.ChatRoleUser, message, entity.TurnMetadata{
		Type: constant.TurnTypeClarificationTrigger,
	})

	event := cs.handler.QuestionEvent(state)
	first := state.CurrentQuestion()
	firstId := first.Id
	session.AppendTurn(constant.ChatRoleAssistant, event.Text, entity.TurnMetadata{
		Type:           constant.TurnTypeClarificationQuestion,
		QuestionId:     &firstId,
		Category:       first.Category,
		TotalQuestions: len(state.Questions()),
	})

	cs.publishEvent(ctx, events.NewClarificationStarted(
		session.Id.String(), state.OriginalQuery(), len(state.Questions()),
	))
	return event, true
}

// shouldTriggerClarification gates flow starts: a minimum length plus a
// coarse keyword match. Deliberately cheap; the generator makes the real
// in-scope decision.
func (cs *conversationService) shouldTriggerClarification(message string) bool {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) < constant.MinClarificationQueryLength {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, keyword := range constant.DestinationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (cs *conversationService) HandleAction(ctx context.Context, sessionId uuid.UUID, req *dto.ActionRequest) (*dto.ChatResponse, error) {
	switch req.Name {
	case "quick_reply":
		// Quick replies are just pre-filled answers.
		return cs.ProcessMessage(ctx, sessionId, req.Value)
	case "reset":
		if err := cs.sessionManager.Clear(ctx, sessionId); err != nil {
			return nil, err
		}
		return &dto.ChatResponse{Type: "reset", Text: constant.ResetText}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", req.Name)
	}
}

func (cs *conversationService) GetClarificationSummary(ctx context.Context, sessionId uuid.UUID) (*clarification.Summary, error) {
	session, err := cs.sessionManager.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionId, ErrSessionNotFound)
	}

	if session.ClarificationState != nil {
		summary := session.ClarificationState.Summary()
		return &summary, nil
	}

	// After the live state is dropped the episode survives in the collected
	// answers.
	if len(session.CollectedEntities.ClarificationAnswers) > 0 {
		answers := make(map[int]clarification.Answer, len(session.CollectedEntities.ClarificationAnswers))
		for id, a := range session.CollectedEntities.ClarificationAnswers {
			answers[id] = a
		}
		return &clarification.Summary{
			OriginalQuery:  session.OriginalClarificationQuery,
			TotalQuestions: len(answers),
			Answers:        answers,
			Complete:       true,
		}, nil
	}

	return nil, fmt.Errorf("session %s has no clarification data", sessionId)
}

func (cs *conversationService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetHistoryResponse, error) {
	session, err := cs.sessionManager.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionId, ErrSessionNotFound)
	}

	turns := make([]dto.ConversationTurnResponse, 0, len(session.ConversationHistory))
	for _, turn := range session.ConversationHistory {
		turns = append(turns, dto.ConversationTurnResponse{
			Role:      turn.Role,
			Content:   turn.Content,
			Timestamp: turn.Timestamp,
			Metadata:  turnMetadataMap(turn.Metadata),
		})
	}

	return &dto.GetHistoryResponse{
		SessionId:           sessionId,
		ConversationHistory: turns,
	}, nil
}

func (cs *conversationService) SaveFeedback(ctx context.Context, sessionId uuid.UUID, req *dto.FeedbackRequest) error {
	conversation, err := cs.conversationRepo.Get(ctx, sessionId)
	if err != nil {
		return fmt.Errorf("load conversation %s: %w", sessionId, err)
	}
	if conversation == nil {
		conversation = &entity.Conversation{
			SessionId: sessionId,
			CreatedAt: time.Now(),
		}
	}

	conversation.Feedback = &entity.Feedback{
		Rating:       req.Rating,
		FeedbackText: req.FeedbackText,
		Timestamp:    time.Now(),
		FeedbackType: "recommendation_rating",
	}

	if err := cs.conversationRepo.Save(ctx, conversation); err != nil {
		return fmt.Errorf("save feedback for %s: %w", sessionId, err)
	}

	cs.publishEvent(ctx, events.NewFeedbackReceived(sessionId.String(), req.Rating))
	return nil
}

func (cs *conversationService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	return cs.sessionManager.Delete(ctx, sessionId)
}

func (cs *conversationService) resetClarification(session *entity.Session) {
	session.ClarificationState = nil
	session.ClarificationComplete = false
	session.OriginalClarificationQuery = ""
	session.CollectedEntities.ClarificationAnswers = nil
}

// projectConversation keeps the analytics projection in step with the live
// session. Projection writes are best effort: a failure is logged, never
// surfaced to the chat client.
func (cs *conversationService) projectConversation(ctx context.Context, session *entity.Session) {
	existing, err := cs.conversationRepo.Get(ctx, session.Id)
	if err != nil {
		cs.logger.Warn("Conversation", "Failed to load conversation projection", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return
	}

	conversation := &entity.Conversation{
		SessionId: session.Id,
		CreatedAt: session.CreatedAt,
	}
	if existing != nil {
		conversation.Feedback = existing.Feedback
		conversation.PipelineResult = existing.PipelineResult
		conversation.CreatedAt = existing.CreatedAt
	}

	conversation.ConversationHistory = session.ConversationHistory
	conversation.ClarificationData = entity.BuildClarificationData(session)

	if err := cs.conversationRepo.Save(ctx, conversation); err != nil {
		cs.logger.Warn("Conversation", "Failed to save conversation projection", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

func (cs *conversationService) publishEvent(ctx context.Context, event events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("Conversation", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}

func eventToResponse(event clarification.Event) *dto.ChatResponse {
	return &dto.ChatResponse{
		Type:            event.Type,
		Text:            event.Text,
		QuestionId:      event.QuestionId,
		Progress:        event.Progress,
		Summary:         event.Summary,
		TriggerPipeline: event.TriggerPipeline,
		Metadata:        event.Metadata,
	}
}

func turnMetadataMap(m entity.TurnMetadata) map[string]interface{} {
	out := make(map[string]interface{})
	if m.Type != "" {
		out["type"] = m.Type
	}
	if m.QuestionId != nil {
		out["question_id"] = *m.QuestionId
	}
	if m.Category != "" {
		out["category"] = m.Category
	}
	if m.TotalQuestions > 0 {
		out["total_questions"] = m.TotalQuestions
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

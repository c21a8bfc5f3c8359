package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"greentrip-be/internal/constant"
	"greentrip-be/internal/dto"
	"greentrip-be/internal/entity"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/repository/contract"
	"greentrip-be/internal/websocket"
	"greentrip-be/pkg/agents"
	"greentrip-be/pkg/events"
	pktNats "greentrip-be/pkg/nats"
)

const pipelineTimeout = 300 * time.Second

var pipelineRetryDelay = 5 * time.Second

// IPipelineService decouples the chat request path from the recommendation
// pipeline. The chat handler only enqueues; the consumer does the slow agent
// call in the background and pushes the result over the websocket hub.
type IPipelineService interface {
	Enqueue(ctx context.Context, sessionId uuid.UUID) error
	Consume(ctx context.Context) error
}

// PipelineRunner is the slice of the agents client the worker needs.
type PipelineRunner interface {
	RunPipeline(ctx context.Context, sessionId string) (*agents.CFEOutput, error)
}

type pipelineService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	runner           PipelineRunner
	sessionManager   ISessionManager
	conversationRepo contract.ConversationRepository
	hub              *websocket.Hub
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewPipelineService(
	pubSub *gochannel.GoChannel,
	topicName string,
	runner PipelineRunner,
	sessionManager ISessionManager,
	conversationRepo contract.ConversationRepository,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IPipelineService {
	return &pipelineService{
		pubSub:           pubSub,
		topicName:        topicName,
		runner:           runner,
		sessionManager:   sessionManager,
		conversationRepo: conversationRepo,
		hub:              hub,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (ps *pipelineService) Enqueue(ctx context.Context, sessionId uuid.UUID) error {
	payload, err := json.Marshal(dto.RunPipelineMessage{SessionId: sessionId})
	if err != nil {
		return fmt.Errorf("marshal pipeline job: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("enqueue pipeline job: %w", err)
	}

	ps.logger.Info("Pipeline", "Pipeline job enqueued", map[string]interface{}{
		"session_id": sessionId,
	})
	return nil
}

func (ps *pipelineService) Consume(ctx context.Context) error {
	messages, err := ps.pubSub.Subscribe(ctx, ps.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ps.processMessage(msg)
		}
	}()

	return nil
}

func (ps *pipelineService) processMessage(msg *message.Message) {
	var payload dto.RunPipelineMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ps.logger.Error("Pipeline", "Failed to unmarshal pipeline job", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	ps.logger.Info("Pipeline", "Running recommendation pipeline", map[string]interface{}{
		"session_id": payload.SessionId,
	})

	started := time.Now()
	result, err := ps.runWithRetry(payload.SessionId)
	duration := time.Since(started).Seconds()

	if err != nil {
		ps.logger.Error("Pipeline", "Pipeline run failed", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		ps.hub.Send(payload.SessionId, dto.PipelineResultResponse{
			Type:      constant.TurnTypePipelineResult,
			SessionId: payload.SessionId,
			Error:     "The recommendation pipeline failed. Please try again.",
		})
		ps.publishEvent(events.NewPipelineCompleted(payload.SessionId.String(), false, duration))
		// The job is spent; the user retries by sending a new query.
		msg.Ack()
		return
	}

	ps.persistResult(payload.SessionId, result)

	ps.hub.Send(payload.SessionId, dto.PipelineResultResponse{
		Type:      constant.TurnTypePipelineResult,
		SessionId: payload.SessionId,
		Result:    result,
	})
	ps.publishEvent(events.NewPipelineCompleted(payload.SessionId.String(), true, duration))

	ps.logger.Info("Pipeline", "Pipeline run finished", map[string]interface{}{
		"session_id":       payload.SessionId,
		"duration_seconds": duration,
	})
	msg.Ack()
}

// runWithRetry calls the pipeline once and retries a single time after a
// short delay. The pipeline sequences several LLM agents, so transient agent
// hiccups are common but repeated failures are not worth hammering.
func (ps *pipelineService) runWithRetry(sessionId uuid.UUID) (*agents.CFEOutput, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	result, err := ps.runner.RunPipeline(ctx, sessionId.String())
	if err == nil {
		return result, nil
	}

	ps.logger.Warn("Pipeline", "Pipeline attempt failed, retrying once", map[string]interface{}{
		"session_id": sessionId,
		"error":      err.Error(),
	})
	time.Sleep(pipelineRetryDelay)

	retryCtx, retryCancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer retryCancel()
	return ps.runner.RunPipeline(retryCtx, sessionId.String())
}

// persistResult stores the pipeline output on the conversation projection and
// appends a marker turn to the session history. Both writes are best effort;
// the websocket push already carries the result to the user.
func (ps *pipelineService) persistResult(sessionId uuid.UUID, result *agents.CFEOutput) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conversation, err := ps.conversationRepo.Get(ctx, sessionId)
	if err == nil {
		if conversation == nil {
			conversation = &entity.Conversation{
				SessionId: sessionId,
				CreatedAt: time.Now(),
			}
		}
		conversation.PipelineResult = result
		err = ps.conversationRepo.Save(ctx, conversation)
	}
	if err != nil {
		ps.logger.Warn("Pipeline", "Failed to persist pipeline result", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	session, err := ps.sessionManager.Get(ctx, sessionId)
	if err != nil || session == nil {
		return
	}
	session.AppendTurn(constant.ChatRoleAssistant, result.ExplanationShown, entity.TurnMetadata{
		Type: constant.TurnTypePipelineResult,
	})
	if err := ps.sessionManager.Save(ctx, session); err != nil {
		ps.logger.Warn("Pipeline", "Failed to append pipeline turn", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (ps *pipelineService) publishEvent(event events.Event) {
	if ps.eventPublisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ps.eventPublisher.Publish(ctx, event); err != nil {
		ps.logger.Warn("Pipeline", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}

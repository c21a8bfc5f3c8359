package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrip-be/internal/constant"
	"greentrip-be/internal/dto"
	"greentrip-be/internal/repository/contract"
	"greentrip-be/internal/repository/memory"
	"greentrip-be/pkg/agents"
	"greentrip-be/pkg/clarification"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type scriptedGenerator struct {
	output *agents.CQOutput
	err    error
	calls  int
}

func (g *scriptedGenerator) GenerateClarifyingQuestions(ctx context.Context, userInput string) (*agents.CQOutput, error) {
	g.calls++
	return g.output, g.err
}

func twoQuestionOutput() *agents.CQOutput {
	return &agents.CQOutput{
		Query: "recommend a quiet coastal city",
		ClarifyingQuestions: []agents.ClarifyingQuestion{
			{Id: 0, Category: "timing", Question: "When do you want to travel?"},
			{Id: 1, Category: "interests", Question: "What do you enjoy doing?"},
		},
	}
}

type fixture struct {
	service          IConversationService
	sessionManager   ISessionManager
	conversationRepo contract.ConversationRepository
	generator        *scriptedGenerator
}

func newFixture(generator *scriptedGenerator) *fixture {
	sessionRepo := memory.NewSessionRepository(time.Hour)
	conversationRepo := memory.NewConversationRepository()
	handler := clarification.NewHandler(generator, nopLogger{})
	sessionManager := NewSessionManager(sessionRepo, nopLogger{})

	return &fixture{
		service:          NewConversationService(sessionManager, conversationRepo, handler, nil, nopLogger{}),
		sessionManager:   sessionManager,
		conversationRepo: conversationRepo,
		generator:        generator,
	}
}

func TestProcessMessagePassThrough(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name    string
		message string
	}{
		{"no destination keyword", "thanks, that was helpful"},
		{"too short despite keyword", "trip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.service.ProcessMessage(ctx, created.Id, tt.message)
			require.NoError(t, err)
			assert.Equal(t, "message", res.Type)
			assert.Equal(t, constant.PassThroughText, res.Text)
			assert.False(t, res.TriggerPipeline)
		})
	}

	assert.Zero(t, f.generator.calls, "pass-through must never call the generator")
}

func TestFullClarificationFlow(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	// Trigger
	res, err := f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventQuestion, res.Type)
	assert.Equal(t, "When do you want to travel?", res.Text)
	require.NotNil(t, res.QuestionId)
	assert.Equal(t, 0, *res.QuestionId)
	require.NotNil(t, res.Progress)
	assert.Equal(t, 2, res.Progress.Total)
	assert.Equal(t, 0, res.Progress.Answered)

	// First answer -> second question
	res, err = f.service.ProcessMessage(ctx, created.Id, "late spring")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventQuestion, res.Type)
	require.NotNil(t, res.QuestionId)
	assert.Equal(t, 1, *res.QuestionId)
	assert.Equal(t, 1, res.Progress.Answered)
	assert.False(t, res.TriggerPipeline)

	// Second answer -> completion
	res, err = f.service.ProcessMessage(ctx, created.Id, "museums and food")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventComplete, res.Type)
	assert.True(t, res.TriggerPipeline)
	require.NotNil(t, res.Summary)
	assert.True(t, res.Summary.Complete)
	assert.Len(t, res.Summary.Answers, 2)
	assert.Equal(t, "late spring", res.Summary.Answers[0].Answer)

	assert.Equal(t, 1, f.generator.calls, "one flow must call the generator exactly once")

	// Summary survives via the session
	summary, err := f.service.GetClarificationSummary(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, summary.Complete)
	assert.Equal(t, "recommend a quiet coastal city", summary.OriginalQuery)

	// Projection carries the completed episode
	conversation, err := f.conversationRepo.Get(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, conversation)
	require.NotNil(t, conversation.ClarificationData)
	assert.True(t, conversation.ClarificationData.ClarificationComplete)
	assert.Len(t, conversation.ClarificationData.ClarifyingQuestions, 2)
	require.NotNil(t, conversation.ClarificationData.ClarifyingQuestions[1].Answer)
	assert.Equal(t, "museums and food", *conversation.ClarificationData.ClarifyingQuestions[1].Answer)

	// History has trigger, questions, answers, completion
	history, err := f.service.GetHistory(ctx, created.Id)
	require.NoError(t, err)
	assert.Len(t, history.ConversationHistory, 6)
	assert.Equal(t, constant.TurnTypeClarificationTrigger, history.ConversationHistory[0].Metadata["type"])
}

func TestMessageAfterCompletionStartsFreshFlow(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)
	_, err = f.service.ProcessMessage(ctx, created.Id, "late spring")
	require.NoError(t, err)
	res, err := f.service.ProcessMessage(ctx, created.Id, "museums and food")
	require.NoError(t, err)
	require.True(t, res.TriggerPipeline)

	// Next destination query starts a brand-new flow instead of being
	// swallowed as an answer.
	res, err = f.service.ProcessMessage(ctx, created.Id, "now find me somewhere warm instead")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventQuestion, res.Type)
	require.NotNil(t, res.QuestionId)
	assert.Equal(t, 0, *res.QuestionId)
	assert.Equal(t, 0, res.Progress.Answered)
	assert.Equal(t, 2, f.generator.calls)
}

func TestOutOfScopeLeavesNoState(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: &agents.CQOutput{Query: "weather"}})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	res, err := f.service.ProcessMessage(ctx, created.Id, "recommend me a good laptop")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventOutOfScope, res.Type)
	assert.False(t, res.TriggerPipeline)
	reset, _ := res.Metadata["reset_session"].(bool)
	assert.True(t, reset)

	// No clarification survives; there is nothing to summarize.
	_, err = f.service.GetClarificationSummary(ctx, created.Id)
	assert.Error(t, err)

	// The session keeps working as a fresh one.
	f.generator.output = twoQuestionOutput()
	res, err = f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventQuestion, res.Type)
}

func TestGeneratorFailureIsRecoverable(t *testing.T) {
	f := newFixture(&scriptedGenerator{err: errors.New("connection refused")})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	res, err := f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err, "transport failures must not fail the request")
	assert.Equal(t, clarification.EventError, res.Type)
	assert.NotContains(t, res.Text, "connection refused", "transport detail belongs in the logs, not the reply")

	// Once the backend recovers the same session can start a flow.
	f.generator.err = nil
	f.generator.output = twoQuestionOutput()
	res, err = f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventQuestion, res.Type)
}

// The stored document after completion carries the flag and the collected
// answers but no live state; a follow-up read must not see a dangling cursor.
func TestCompletionClearsStoredState(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)
	_, err = f.service.ProcessMessage(ctx, created.Id, "late spring")
	require.NoError(t, err)
	res, err := f.service.ProcessMessage(ctx, created.Id, "museums and food")
	require.NoError(t, err)
	require.True(t, res.TriggerPipeline)

	stored, err := f.sessionManager.Get(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.ClarificationComplete)
	assert.Nil(t, stored.ClarificationState)
	assert.Len(t, stored.CollectedEntities.ClarificationAnswers, 2)
}

// A generator failure must leave the stored session exactly as it was before
// the message arrived.
func TestGeneratorFailurePersistsNothing(t *testing.T) {
	f := newFixture(&scriptedGenerator{err: errors.New("connection refused")})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	res, err := f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)
	assert.Equal(t, clarification.EventError, res.Type)

	stored, err := f.sessionManager.Get(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.ConversationHistory)
	assert.Nil(t, stored.ClarificationState)
	assert.False(t, stored.ClarificationComplete)

	conversation, err := f.conversationRepo.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Nil(t, conversation, "failed step must not reach the projection either")
}

func TestHandleAction(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)

	// Quick replies feed the active flow like typed messages.
	res, err := f.service.HandleAction(ctx, created.Id, &dto.ActionRequest{Name: "quick_reply", Value: "late spring"})
	require.NoError(t, err)
	assert.Equal(t, clarification.EventQuestion, res.Type)
	assert.Equal(t, 1, res.Progress.Answered)

	// Reset deletes the session outright.
	res, err = f.service.HandleAction(ctx, created.Id, &dto.ActionRequest{Name: "reset"})
	require.NoError(t, err)
	assert.Equal(t, "reset", res.Type)
	assert.Equal(t, constant.ResetText, res.Text)

	_, err = f.service.GetHistory(ctx, created.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The same id keeps working; the next message recreates a blank session.
	res, err = f.service.ProcessMessage(ctx, created.Id, "hello again")
	require.NoError(t, err)
	assert.Equal(t, "message", res.Type)

	_, err = f.service.HandleAction(ctx, created.Id, &dto.ActionRequest{Name: "launch"})
	assert.Error(t, err)
}

func TestUnknownSessionIsRecreated(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	// A session id the store has never seen (or has expired) still works.
	res, err := f.service.ProcessMessage(ctx, uuid.New(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "message", res.Type)
}

func TestSaveFeedback(t *testing.T) {
	f := newFixture(&scriptedGenerator{output: twoQuestionOutput()})
	ctx := context.Background()

	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.service.ProcessMessage(ctx, created.Id, "recommend a quiet coastal city")
	require.NoError(t, err)

	text := "loved the suggestion"
	err = f.service.SaveFeedback(ctx, created.Id, &dto.FeedbackRequest{Rating: 5, FeedbackText: &text})
	require.NoError(t, err)

	conversation, err := f.conversationRepo.Get(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, conversation.Feedback)
	assert.Equal(t, 5, conversation.Feedback.Rating)
	assert.Equal(t, "recommendation_rating", conversation.Feedback.FeedbackType)
	require.NotNil(t, conversation.Feedback.FeedbackText)
	assert.Equal(t, text, *conversation.Feedback.FeedbackText)

	// Feedback survives later projection updates.
	_, err = f.service.ProcessMessage(ctx, created.Id, "late spring")
	require.NoError(t, err)

	conversation, err = f.conversationRepo.Get(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, conversation.Feedback)
	assert.Equal(t, 5, conversation.Feedback.Rating)
}

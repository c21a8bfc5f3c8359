package mapper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/model"
	"greentrip-be/pkg/clarification"
)

func TestSessionMapperRoundTrip(t *testing.T) {
	m := NewSessionMapper()

	session := &entity.Session{Id: uuid.New(), ClarificationComplete: true}
	session.AppendTurn("user", "recommend a city", entity.TurnMetadata{Type: "clarification_trigger"})
	session.OriginalClarificationQuery = "recommend a city"
	session.RecordClarificationAnswer(0, clarification.Answer{
		Question: "When?", Category: "timing", Answer: "spring",
	})

	state := clarification.NewState("recommend a city", []clarification.Question{
		{Id: 0, Category: "timing", Text: "When?"},
		{Id: 1, Category: "budget", Text: "Budget?"},
	})
	state.AddAnswer(0, "spring")
	session.ClarificationState = state

	stored, err := m.ToModel(session)
	require.NoError(t, err)
	assert.True(t, stored.ClarificationComplete)

	restored, err := m.ToEntity(stored)
	require.NoError(t, err)
	assert.Equal(t, session.Id, restored.Id)
	assert.Len(t, restored.ConversationHistory, 1)
	assert.Equal(t, "spring", restored.CollectedEntities.ClarificationAnswers[0].Answer)
	require.NotNil(t, restored.ClarificationState)
	assert.Equal(t, 1, restored.ClarificationState.CurrentQuestion().Id)
}

func TestSessionMapperRejectsCorruptDocuments(t *testing.T) {
	m := NewSessionMapper()

	tests := []struct {
		name     string
		document string
	}{
		{"not json", `{{`},
		{"non-numeric answer key", `{"collected_entities":{"clarification_answers":{"zero":{"answer":"a"}}}}`},
		{"cursor beyond questions", `{"clarification_state":{"original_query":"q","questions":[],"answers":{},"current_index":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ToEntity(&model.Session{Id: uuid.New(), Document: []byte(tt.document)})
			assert.Error(t, err)
		})
	}
}

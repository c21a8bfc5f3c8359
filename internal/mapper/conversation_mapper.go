package mapper

import (
	"encoding/json"
	"fmt"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/model"
	"greentrip-be/pkg/agents"
)

type conversationDocument struct {
	ConversationHistory []turnDocument            `json:"conversation_history"`
	ClarificationData   *entity.ClarificationData `json:"clarification_data,omitempty"`
	Feedback            *entity.Feedback          `json:"feedback,omitempty"`
	PipelineResult      *agents.CFEOutput         `json:"pipeline_result,omitempty"`
}

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToModel(conv *entity.Conversation) (*model.Conversation, error) {
	doc := conversationDocument{
		ConversationHistory: turnsToDocuments(conv.ConversationHistory),
		ClarificationData:   conv.ClarificationData,
		Feedback:            conv.Feedback,
		PipelineResult:      conv.PipelineResult,
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal conversation document: %w", err)
	}

	return &model.Conversation{
		SessionId:   conv.SessionId,
		Document:    raw,
		HasFeedback: conv.Feedback != nil,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.UpdatedAt,
	}, nil
}

func (m *ConversationMapper) ToEntity(stored *model.Conversation) (*entity.Conversation, error) {
	var doc conversationDocument
	if err := json.Unmarshal(stored.Document, &doc); err != nil {
		return nil, fmt.Errorf("conversation %s: invalid document: %w", stored.SessionId, err)
	}

	return &entity.Conversation{
		SessionId:           stored.SessionId,
		ConversationHistory: documentsToTurns(doc.ConversationHistory),
		ClarificationData:   doc.ClarificationData,
		Feedback:            doc.Feedback,
		PipelineResult:      doc.PipelineResult,
		CreatedAt:           stored.CreatedAt,
		UpdatedAt:           stored.UpdatedAt,
	}, nil
}

package service

import (
	"context"
	"time"

	"greentrip-be/internal/dto"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/repository/contract"
)

// IExportService produces the clarification training export and the usage
// statistics consumed by the research tooling.
type IExportService interface {
	ExportClarifications(ctx context.Context, limit int) (*dto.ClarificationExport, error)
	Statistics(ctx context.Context) (*dto.ClarificationStatistics, error)
}

type exportService struct {
	conversationRepo contract.ConversationRepository
	logger           logger.ILogger
}

func NewExportService(conversationRepo contract.ConversationRepository, log logger.ILogger) IExportService {
	return &exportService{conversationRepo: conversationRepo, logger: log}
}

// ExportClarifications collects every completed clarification episode as
// question/answer pairs. Conversations without a finished episode are skipped.
func (es *exportService) ExportClarifications(ctx context.Context, limit int) (*dto.ClarificationExport, error) {
	conversations, err := es.conversationRepo.FindAll(ctx, limit)
	if err != nil {
		return nil, err
	}

	export := &dto.ClarificationExport{
		ExportDate: time.Now(),
		Data:       make([]dto.ClarificationSessionExport, 0),
	}

	for _, conversation := range conversations {
		data := conversation.ClarificationData
		if data == nil || !data.ClarificationComplete {
			continue
		}

		pairs := make([]dto.ClarificationQAExport, 0, len(data.ClarifyingQuestions))
		for _, q := range data.ClarifyingQuestions {
			if q.Answer == nil {
				continue
			}
			pairs = append(pairs, dto.ClarificationQAExport{
				QuestionId: q.Id,
				Category:   q.Category,
				Question:   q.Text,
				Answer:     *q.Answer,
			})
		}
		if len(pairs) == 0 {
			continue
		}

		export.Data = append(export.Data, dto.ClarificationSessionExport{
			SessionId:       conversation.SessionId.String(),
			Timestamp:       conversation.UpdatedAt,
			OriginalQuery:   data.Query,
			ClarificationQA: pairs,
		})
		export.TotalQAPairs += len(pairs)
	}

	export.TotalSessions = len(export.Data)

	es.logger.Info("Export", "Clarification export built", map[string]interface{}{
		"sessions": export.TotalSessions,
		"qa_pairs": export.TotalQAPairs,
	})
	return export, nil
}

func (es *exportService) Statistics(ctx context.Context) (*dto.ClarificationStatistics, error) {
	conversations, err := es.conversationRepo.FindAll(ctx, 0)
	if err != nil {
		return nil, err
	}

	stats := &dto.ClarificationStatistics{
		TotalConversations: len(conversations),
		CategoryBreakdown:  make(map[string]int),
	}

	completed := 0
	for _, conversation := range conversations {
		if conversation.Feedback != nil {
			stats.WithFeedback++
		}

		data := conversation.ClarificationData
		if data == nil {
			stats.WithoutClarification++
			continue
		}

		stats.WithClarification++
		if data.ClarificationComplete {
			completed++
		}

		stats.TotalQuestionsAsked += len(data.ClarifyingQuestions)
		for _, q := range data.ClarifyingQuestions {
			if q.Answer == nil {
				continue
			}
			stats.TotalAnswers++
			if q.Category != "" {
				stats.CategoryBreakdown[q.Category]++
			}
		}
	}

	if stats.WithClarification > 0 {
		stats.CompletionRate = float64(completed) / float64(stats.WithClarification)
	}

	return stats, nil
}

package dto

import "time"

// ClarificationQAExport is one exported question/answer pair.
type ClarificationQAExport struct {
	QuestionId int    `json:"question_id"`
	Category   string `json:"category,omitempty"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ClarificationSessionExport groups the Q&A pairs of one session.
type ClarificationSessionExport struct {
	SessionId       string                  `json:"session_id"`
	Timestamp       time.Time               `json:"timestamp"`
	OriginalQuery   string                  `json:"original_query,omitempty"`
	ClarificationQA []ClarificationQAExport `json:"clarification_qa"`
}

// ClarificationExport is the full export document written for analysis.
type ClarificationExport struct {
	ExportDate    time.Time                    `json:"export_date"`
	TotalSessions int                          `json:"total_sessions"`
	TotalQAPairs  int                          `json:"total_qa_pairs"`
	Data          []ClarificationSessionExport `json:"data"`
}

// ClarificationStatistics summarizes clarification usage across conversations.
type ClarificationStatistics struct {
	TotalConversations   int            `json:"total_conversations"`
	WithClarification    int            `json:"with_clarification"`
	WithoutClarification int            `json:"without_clarification"`
	TotalQuestionsAsked  int            `json:"total_questions_asked"`
	TotalAnswers         int            `json:"total_answers_collected"`
	CategoryBreakdown    map[string]int `json:"category_breakdown"`
	CompletionRate       float64        `json:"completion_rate"`
	WithFeedback         int            `json:"with_feedback"`
}

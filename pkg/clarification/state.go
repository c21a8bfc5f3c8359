package clarification

import (
	"fmt"
	"strconv"
)

// Question is one clarifying question in the fixed set returned by the
// generator. Answer stays nil until the question is answered.
type Question struct {
	Id       int     `json:"id"`
	Category string  `json:"category,omitempty"`
	Text     string  `json:"question"`
	Answer   *string `json:"answer"`
}

// Answer is the snapshot recorded when a question is answered. It is what
// survives in the session's collected entities after the state is discarded.
type Answer struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
	Answer   string `json:"answer"`
}

// Progress describes how far a clarification episode has advanced.
type Progress struct {
	Answered     int `json:"answered"`
	Total        int `json:"total"`
	CurrentIndex int `json:"current_index"`
	Percentage   int `json:"percentage"`
}

// Summary is a read-only snapshot for downstream consumers.
type Summary struct {
	OriginalQuery  string         `json:"original_query"`
	TotalQuestions int            `json:"total_questions"`
	Answers        map[int]Answer `json:"answers"`
	Complete       bool           `json:"complete"`
}

// State tracks one clarification episode: the original query, the fixed
// ordered question set, collected answers and the cursor pointing at the next
// unanswered question. The cursor only ever moves forward, one accepted
// answer at a time.
type State struct {
	originalQuery string
	questions     []Question
	answers       map[int]Answer
	cursor        int
}

func NewState(originalQuery string, questions []Question) *State {
	return &State{
		originalQuery: originalQuery,
		questions:     questions,
		answers:       make(map[int]Answer),
	}
}

func (s *State) OriginalQuery() string {
	return s.originalQuery
}

// Questions returns a copy of the question set.
func (s *State) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// CurrentQuestion returns the question at the cursor, or nil when every
// question has been answered.
func (s *State) CurrentQuestion() *Question {
	if s.cursor < len(s.questions) {
		q := s.questions[s.cursor]
		return &q
	}
	return nil
}

// AddAnswer records an answer for the question currently at the cursor and
// advances it. Answering any other question id is rejected without mutating
// the state; this guards against stale or out-of-order UI requests.
func (s *State) AddAnswer(questionId int, answer string) bool {
	current := s.CurrentQuestion()
	if current == nil || current.Id != questionId {
		return false
	}

	s.questions[s.cursor].Answer = &answer
	s.answers[questionId] = Answer{
		Question: current.Text,
		Category: current.Category,
		Answer:   answer,
	}
	s.cursor++
	return true
}

// IsComplete reports whether every question has been answered.
func (s *State) IsComplete() bool {
	return s.cursor >= len(s.questions)
}

func (s *State) Progress() Progress {
	percentage := 100
	if len(s.questions) > 0 {
		percentage = len(s.answers) * 100 / len(s.questions)
	}
	return Progress{
		Answered:     len(s.answers),
		Total:        len(s.questions),
		CurrentIndex: s.cursor,
		Percentage:   percentage,
	}
}

func (s *State) Summary() Summary {
	answers := make(map[int]Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}
	return Summary{
		OriginalQuery:  s.originalQuery,
		TotalQuestions: len(s.questions),
		Answers:        answers,
		Complete:       s.IsComplete(),
	}
}

// Answers returns a copy of the collected answer snapshots keyed by question id.
func (s *State) Answers() map[int]Answer {
	out := make(map[int]Answer, len(s.answers))
	for id, a := range s.answers {
		out[id] = a
	}
	return out
}

// Document is the storage form of a State. Answer keys are stringified for
// document-store compatibility; everything internal uses native int keys.
type Document struct {
	OriginalQuery string            `json:"original_query"`
	Questions     []Question        `json:"questions"`
	Answers       map[string]Answer `json:"answers"`
	CurrentIndex  int               `json:"current_index"`
}

// Document serializes the state for storage inside a session document.
func (s *State) Document() Document {
	questions := make([]Question, len(s.questions))
	copy(questions, s.questions)

	answers := make(map[string]Answer, len(s.answers))
	for id, a := range s.answers {
		answers[strconv.Itoa(id)] = a
	}

	return Document{
		OriginalQuery: s.originalQuery,
		Questions:     questions,
		Answers:       answers,
		CurrentIndex:  s.cursor,
	}
}

// FromDocument reconstructs a State, rejecting documents that violate the
// state invariants instead of trusting arbitrary stored data.
func FromDocument(doc Document) (*State, error) {
	if doc.CurrentIndex < 0 || doc.CurrentIndex > len(doc.Questions) {
		return nil, fmt.Errorf("clarification state: cursor %d out of range for %d questions",
			doc.CurrentIndex, len(doc.Questions))
	}
	if len(doc.Answers) != doc.CurrentIndex {
		return nil, fmt.Errorf("clarification state: %d answers recorded but cursor is %d",
			len(doc.Answers), doc.CurrentIndex)
	}

	answers := make(map[int]Answer, len(doc.Answers))
	for key, a := range doc.Answers {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("clarification state: non-numeric answer key %q", key)
		}
		answers[id] = a
	}

	questions := make([]Question, len(doc.Questions))
	copy(questions, doc.Questions)

	return &State{
		originalQuery: doc.OriginalQuery,
		questions:     questions,
		answers:       answers,
		cursor:        doc.CurrentIndex,
	}, nil
}

package clarification

import (
	"testing"
)

func threeQuestions() []Question {
	return []Question{
		{Id: 0, Category: "timing", Text: "When do you want to travel?"},
		{Id: 1, Category: "interests", Text: "What do you enjoy doing?"},
		{Id: 2, Category: "budget", Text: "What is your budget?"},
	}
}

func TestAddAnswerAdvancesCursor(t *testing.T) {
	s := NewState("coastal city trip", threeQuestions())

	if s.IsComplete() {
		t.Fatal("fresh state must not be complete")
	}
	if got := s.CurrentQuestion().Id; got != 0 {
		t.Fatalf("CurrentQuestion().Id = %d, want 0", got)
	}

	if !s.AddAnswer(0, "late spring") {
		t.Fatal("AddAnswer(0) rejected")
	}
	if got := s.CurrentQuestion().Id; got != 1 {
		t.Fatalf("after one answer CurrentQuestion().Id = %d, want 1", got)
	}
	if got := s.Answers()[0].Answer; got != "late spring" {
		t.Fatalf("recorded answer = %q, want %q", got, "late spring")
	}
}

func TestAddAnswerRejectsOutOfOrder(t *testing.T) {
	tests := []struct {
		name       string
		questionId int
	}{
		{"future question", 2},
		{"unknown question", 99},
		{"negative id", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState("q", threeQuestions())

			if s.AddAnswer(tt.questionId, "whatever") {
				t.Errorf("AddAnswer(%d) accepted, want rejection", tt.questionId)
			}
			if got := s.Progress().Answered; got != 0 {
				t.Errorf("rejected answer mutated state: answered = %d", got)
			}
			if got := s.CurrentQuestion().Id; got != 0 {
				t.Errorf("rejected answer moved cursor to %d", got)
			}
		})
	}
}

func TestAddAnswerRejectsRepeat(t *testing.T) {
	s := NewState("q", threeQuestions())
	s.AddAnswer(0, "first")

	if s.AddAnswer(0, "again") {
		t.Fatal("answering the same question twice must be rejected")
	}
	if got := s.Answers()[0].Answer; got != "first" {
		t.Fatalf("repeat answer overwrote snapshot: %q", got)
	}
}

func TestCompletionOnlyWhenExhausted(t *testing.T) {
	s := NewState("q", threeQuestions())

	answers := []string{"spring", "museums", "mid-range"}
	for i, a := range answers {
		if s.IsComplete() {
			t.Fatalf("complete after %d of %d answers", i, len(answers))
		}
		if !s.AddAnswer(i, a) {
			t.Fatalf("AddAnswer(%d) rejected", i)
		}
	}

	if !s.IsComplete() {
		t.Fatal("all questions answered but IsComplete() == false")
	}
	if s.CurrentQuestion() != nil {
		t.Fatal("CurrentQuestion() must be nil after completion")
	}
	if s.AddAnswer(3, "extra") {
		t.Fatal("completed state accepted another answer")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name           string
		questions      []Question
		answered       int
		wantPercentage int
	}{
		{"no questions", nil, 0, 100},
		{"none answered", threeQuestions(), 0, 0},
		{"one of three", threeQuestions(), 1, 33},
		{"two of three", threeQuestions(), 2, 66},
		{"all answered", threeQuestions(), 3, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState("q", tt.questions)
			for i := 0; i < tt.answered; i++ {
				s.AddAnswer(i, "a")
			}

			p := s.Progress()
			if p.Percentage != tt.wantPercentage {
				t.Errorf("Percentage = %d, want %d", p.Percentage, tt.wantPercentage)
			}
			if p.Answered != tt.answered {
				t.Errorf("Answered = %d, want %d", p.Answered, tt.answered)
			}
			if p.CurrentIndex != tt.answered {
				t.Errorf("CurrentIndex = %d, want %d", p.CurrentIndex, tt.answered)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	s := NewState("coastal city trip", threeQuestions())
	s.AddAnswer(0, "spring")
	s.AddAnswer(1, "museums")

	sum := s.Summary()
	if sum.OriginalQuery != "coastal city trip" {
		t.Errorf("OriginalQuery = %q", sum.OriginalQuery)
	}
	if sum.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", sum.TotalQuestions)
	}
	if sum.Complete {
		t.Error("Complete = true with one question left")
	}
	if got := sum.Answers[1].Category; got != "interests" {
		t.Errorf("answer snapshot category = %q, want interests", got)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := NewState("coastal city trip", threeQuestions())
	s.AddAnswer(0, "spring")
	s.AddAnswer(1, "museums")

	doc := s.Document()
	if doc.CurrentIndex != 2 {
		t.Fatalf("Document().CurrentIndex = %d, want 2", doc.CurrentIndex)
	}
	if _, ok := doc.Answers["0"]; !ok {
		t.Fatal("document answers must be keyed by stringified ids")
	}

	restored, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if restored.CurrentQuestion().Id != 2 {
		t.Errorf("restored cursor at %d, want 2", restored.CurrentQuestion().Id)
	}
	if restored.OriginalQuery() != "coastal city trip" {
		t.Errorf("restored query = %q", restored.OriginalQuery())
	}
	if got := restored.Answers()[1].Answer; got != "museums" {
		t.Errorf("restored answer = %q, want museums", got)
	}

	// Restored state keeps working
	if !restored.AddAnswer(2, "mid-range") {
		t.Fatal("restored state rejected next answer")
	}
	if !restored.IsComplete() {
		t.Fatal("restored state did not complete")
	}
}

func TestFromDocumentRejectsCorruptState(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			"cursor past question set",
			Document{Questions: threeQuestions(), CurrentIndex: 4},
		},
		{
			"negative cursor",
			Document{Questions: threeQuestions(), CurrentIndex: -1},
		},
		{
			"answer count mismatch",
			Document{Questions: threeQuestions(), CurrentIndex: 2,
				Answers: map[string]Answer{"0": {Answer: "a"}}},
		},
		{
			"non-numeric answer key",
			Document{Questions: threeQuestions(), CurrentIndex: 1,
				Answers: map[string]Answer{"zero": {Answer: "a"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromDocument(tt.doc); err == nil {
				t.Error("FromDocument accepted corrupt document")
			}
		})
	}
}

package clarification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"greentrip-be/pkg/agents"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeGenerator struct {
	output *agents.CQOutput
	err    error
}

func (f *fakeGenerator) GenerateClarifyingQuestions(ctx context.Context, userInput string) (*agents.CQOutput, error) {
	return f.output, f.err
}

func TestGenerateQuestions(t *testing.T) {
	tests := []struct {
		name         string
		output       *agents.CQOutput
		err          error
		wantOutScope bool
		wantErr      bool
		wantCount    int
	}{
		{
			name: "valid question set",
			output: &agents.CQOutput{
				Query: "city trip",
				ClarifyingQuestions: []agents.ClarifyingQuestion{
					{Id: 0, Question: "When?"},
					{Id: 1, Question: "Budget?"},
				},
			},
			wantCount: 2,
		},
		{
			name:         "empty set is out of scope",
			output:       &agents.CQOutput{Query: "weather tomorrow"},
			wantOutScope: true,
		},
		{
			name: "sentinel id is out of scope",
			output: &agents.CQOutput{
				Query: "fix my code",
				ClarifyingQuestions: []agents.ClarifyingQuestion{
					{Id: agents.OutOfScopeQuestionId, Question: "n/a"},
				},
			},
			wantOutScope: true,
		},
		{
			name:    "transport failure is a plain error",
			err:     errors.New("connection refused"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeGenerator{output: tt.output, err: tt.err}, nopLogger{})

			state, err := h.GenerateQuestions(context.Background(), "query")

			if tt.wantOutScope {
				if !errors.Is(err, ErrOutOfScope) {
					t.Fatalf("err = %v, want ErrOutOfScope", err)
				}
				return
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if errors.Is(err, ErrOutOfScope) {
					t.Fatal("transport failure must not be classified as out of scope")
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateQuestions: %v", err)
			}
			if got := len(state.Questions()); got != tt.wantCount {
				t.Errorf("question count = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestGenerateQuestionsFallsBackToRawQuery(t *testing.T) {
	h := NewHandler(&fakeGenerator{output: &agents.CQOutput{
		ClarifyingQuestions: []agents.ClarifyingQuestion{{Id: 0, Question: "When?"}},
	}}, nopLogger{})

	state, err := h.GenerateQuestions(context.Background(), "trip to spain")
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if state.OriginalQuery() != "trip to spain" {
		t.Errorf("OriginalQuery = %q, want the raw query", state.OriginalQuery())
	}
}

func TestQuestionEvent(t *testing.T) {
	h := NewHandler(nil, nopLogger{})
	s := NewState("q", []Question{
		{Id: 0, Category: "timing", Text: "When?"},
		{Id: 1, Category: "budget", Text: "Budget?"},
	})

	ev := h.QuestionEvent(s)
	if ev.Type != EventQuestion {
		t.Fatalf("Type = %q", ev.Type)
	}
	if ev.Text != "When?" {
		t.Errorf("Text = %q", ev.Text)
	}
	if ev.QuestionId == nil || *ev.QuestionId != 0 {
		t.Errorf("QuestionId = %v, want 0", ev.QuestionId)
	}
	if ev.Progress == nil || ev.Progress.Total != 2 {
		t.Errorf("Progress = %+v", ev.Progress)
	}
	if ev.TriggerPipeline {
		t.Error("question event must not trigger the pipeline")
	}
}

func TestQuestionEventOnCompleteStateFallsThrough(t *testing.T) {
	h := NewHandler(nil, nopLogger{})
	s := NewState("q", []Question{{Id: 0, Text: "When?"}})
	s.AddAnswer(0, "spring")

	ev := h.QuestionEvent(s)
	if ev.Type != EventComplete {
		t.Fatalf("Type = %q, want %q", ev.Type, EventComplete)
	}
	if !ev.TriggerPipeline {
		t.Error("completion event must trigger the pipeline")
	}
	if ev.Summary == nil || !ev.Summary.Complete {
		t.Errorf("Summary = %+v", ev.Summary)
	}
}

func TestErrorEventUsesFixedText(t *testing.T) {
	h := NewHandler(nil, nopLogger{})

	ev := h.ErrorEvent()
	if ev.Type != EventError {
		t.Fatalf("Type = %q", ev.Type)
	}
	if !strings.Contains(ev.Text, "try again") {
		t.Errorf("Text = %q, want the retry prompt", ev.Text)
	}
	if hadErr, _ := ev.Metadata["error"].(bool); !hadErr {
		t.Error("error event must be tagged in metadata")
	}
}

func TestOutOfScopeEventRequestsReset(t *testing.T) {
	h := NewHandler(nil, nopLogger{})

	ev := h.OutOfScopeEvent()
	if ev.Type != EventOutOfScope {
		t.Fatalf("Type = %q", ev.Type)
	}
	if reset, _ := ev.Metadata["reset_session"].(bool); !reset {
		t.Error("out-of-scope event must ask the caller to reset the session")
	}
	if ev.TriggerPipeline {
		t.Error("out-of-scope event must not trigger the pipeline")
	}
}

package agents

import (
	"encoding/json"
	"fmt"
)

// OutOfScopeQuestionId is the sentinel id the question generator returns when a
// query cannot be clarified at all.
const OutOfScopeQuestionId = -1

// ClarifyingQuestion mirrors the question generator's output schema.
type ClarifyingQuestion struct {
	Id       int     `json:"id"`
	Category string  `json:"category,omitempty"`
	Question string  `json:"question"`
	Answer   *string `json:"answer"`
}

// CQOutput is the response of the clarifying-question generator agent.
type CQOutput struct {
	Query               string               `json:"query"`
	ClarifyingQuestions []ClarifyingQuestion `json:"clarifying_questions"`
}

// Cities is a recommendation target that the agents emit either as a single
// string or as a list of strings.
type Cities []string

func (c *Cities) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Cities{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("cities: expected string or string list: %w", err)
	}
	*c = Cities(many)
	return nil
}

// InputContext is one query + clarified Q&A block inside the intent classifier output.
type InputContext struct {
	UserQuery   string               `json:"user query"`
	ClarifiedQA []ClarifyingQuestion `json:"clarified Q&A"`
}

type CompromiseDetails struct {
	WillingToCompromise bool     `json:"willing_to_compromise"`
	CompromiseFactors   []string `json:"compromise_factors"`
}

// IntentClassificationOutput is the intent classifier agent's result.
type IntentClassificationOutput struct {
	SessionId         string            `json:"session_id"`
	InputData         []InputContext    `json:"input"`
	UserTravelPersona string            `json:"user_travel_persona"`
	TravelIntent      string            `json:"travel_intent"`
	Compromise        CompromiseDetails `json:"compromise"`
}

// RecommendationContext is a single recommendation with its explanation.
type RecommendationContext struct {
	Recommendation Cities  `json:"recommendation"`
	Explanation    string  `json:"explanation"`
	TradeOff       *string `json:"trade_off,omitempty"`
}

// CFEContext carries everything the counterfactual-explanation combiner saw.
type CFEContext struct {
	IntentClassification       *IntentClassificationOutput `json:"intent_classification,omitempty"`
	BaselineRecommendation     *RecommendationContext      `json:"baseline_recommendation,omitempty"`
	ContextAwareRecommendation *RecommendationContext      `json:"context_aware_recommendation,omitempty"`
}

// CFEOutput is the final pipeline result shown to the user, plus the hidden
// alternative used for counterfactual analysis.
type CFEOutput struct {
	SessionId                 string      `json:"session_id"`
	UserQuery                 string      `json:"user_query"`
	Context                   *CFEContext `json:"context,omitempty"`
	RecommendationShown       Cities      `json:"recommendation_shown"`
	ExplanationShown          string      `json:"explanation_shown"`
	AlternativeRecommendation []string    `json:"alternative_recommendation,omitempty"`
	AlternativeExplanation    *string     `json:"alternative_explanation,omitempty"`
	TimeTakenSeconds          *float64    `json:"time_taken_seconds,omitempty"`
}

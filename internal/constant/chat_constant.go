package constant

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"

	// Conversation-history metadata tags used to reconstruct clarification
	// episodes from exported conversations.
	TurnTypeClarificationTrigger  = "clarification_trigger"
	TurnTypeClarificationQuestion = "clarification_question"
	TurnTypeClarificationAnswer   = "clarification_answer"
	TurnTypePipelineResult        = "pipeline_result"

	// Messages shorter than this never trigger a clarification flow.
	MinClarificationQueryLength = 5

	PassThroughText = "Thank you for your message. Recommendation system integration coming soon."
	ResetText       = "Conversation reset! Let's start fresh. Where would you like to explore?"
)

// DestinationKeywords gates the start of a clarification flow. Matching is a
// case-insensitive substring test, deliberately coarse; once a flow is active
// the gate is never consulted again for that episode.
var DestinationKeywords = []string{
	"find", "suggest", "recommend", "looking for", "want to", "travel",
	"visit", "trip", "europe", "city", "place", "destination", "where",
	"going to", "planning", "holiday", "vacation", "tourism", "tour",
	"spain", "france", "italy", "germany", "country", "countries",
}

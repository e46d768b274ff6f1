package models

// Fixed user-facing answer text. The orchestrator and the stub generator
// both match on these strings, so they live in one place.
const (
	NoInformationAnswer   = "I couldn't find any relevant information to answer your question."
	InsufficientAnswer    = "I don't have enough information to answer this question."
	StubAnswerPrefix      = "Based on the available information:"
	StubDisclaimer        = "Note: this answer was derived from document content only, without a generative model."
	ContextSourceTemplate = "Source %d (from %s):\n%s\n"
)

var (
	AnswerPromptTemplate = `Based on the following context, please answer the question.
If the context doesn't contain enough information to answer the question,
say "` + InsufficientAnswer + `"

Context:
%s

Question: %s

Answer:`

	SummaryPromptTemplate = `Please provide a brief summary of the following text:

%s`
)

package constant

// Lifecycle event types published to NATS.
const (
	EventSessionContextInitialized = "SESSION_CONTEXT_INITIALIZED"
	EventSessionQuestionAnswered   = "SESSION_QUESTION_ANSWERED"
	EventSessionEnded              = "SESSION_ENDED"
)

const (
	AnalyzeMaxOutputTokens = 2048
	AnalyzeTemperature     = 0.2
)

const UnderwritingPromptV1 = `You are a loan underwriting AI.
Analyze the following loan application and return:
- Risk summary
- Approval recommendation
- Key red flags

Loan application:
%s
`

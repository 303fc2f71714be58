package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/store"
)

const (
	// SnippetLimit is the number of characters of inline document text shown to the model.
	SnippetLimit = 1000
	// MinContentLength is the length at or below which inline content counts as absent.
	MinContentLength = 10
	// MaxHistoryTurns is three question/answer pairs.
	MaxHistoryTurns = 6

	TruncationMarker = "...[truncated]"

	DefaultUserRole    = "Loan reviewer"
	DefaultInstitution = "Not specified"
	DefaultFocus       = "General loan review"
	DefaultRegion      = "Not specified"
	DefaultLanguage    = "English"
)

// Result is an assembled prompt plus the objects the model should read directly.
type Result struct {
	Prompt      string
	Attachments []llm.Attachment
}

// Assemble builds the question prompt for a session. It has no side effects and
// returns identical output for identical input.
func Assemble(session *store.SessionContext, question string) Result {
	b := &contextualBuilder{
		session:  session,
		question: question,
		history:  session.RecentTurns(MaxHistoryTurns),
	}
	return b.build()
}

type contextualBuilder struct {
	session     *store.SessionContext
	question    string
	history     []store.Turn
	attachments []llm.Attachment
}

func (b *contextualBuilder) build() Result {
	var prompt strings.Builder

	b.writeSessionContext(&prompt)
	b.writeDocuments(&prompt)
	b.writeHistory(&prompt)
	b.writeInstructions(&prompt)
	b.writeQuestion(&prompt)

	return Result{Prompt: prompt.String(), Attachments: b.attachments}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func (b *contextualBuilder) writeSessionContext(prompt *strings.Builder) {
	s := b.session
	role := orDefault(s.UserRole, DefaultUserRole)

	fmt.Fprintf(prompt, "You are an AI loan review assistant helping a %s review the loan %q.\n\n", role, s.LoanName)
	prompt.WriteString("SESSION CONTEXT:\n")
	fmt.Fprintf(prompt, "- Loan: %s\n", s.LoanName)
	fmt.Fprintf(prompt, "- User role: %s\n", role)
	fmt.Fprintf(prompt, "- Institution: %s\n", orDefault(s.Institution, DefaultInstitution))
	fmt.Fprintf(prompt, "- Focus area: %s\n", orDefault(s.AIFocus, DefaultFocus))
	fmt.Fprintf(prompt, "- Region: %s\n", orDefault(s.Region, DefaultRegion))
	fmt.Fprintf(prompt, "- Language: %s\n\n", orDefault(s.Language, DefaultLanguage))
}

func (b *contextualBuilder) writeDocuments(prompt *strings.Builder) {
	docs := b.session.Documents
	fmt.Fprintf(prompt, "AVAILABLE DOCUMENTS (%d):\n", len(docs))
	if len(docs) == 0 {
		prompt.WriteString("No documents were provided for this loan.\n")
	}

	for i, doc := range docs {
		switch {
		case doc.IsReference():
			fmt.Fprintf(prompt, "%d. %s (attached, analyzed directly by the model)\n", i+1, doc.Filename)
			b.attachments = append(b.attachments, llm.NewAttachment(doc.Content, doc.ContentType))
		case utf8.RuneCountInString(strings.TrimSpace(doc.Content)) <= MinContentLength:
			fmt.Fprintf(prompt, "%d. %s\n", i+1, doc.Filename)
		default:
			fmt.Fprintf(prompt, "%d. %s\n", i+1, doc.Filename)
			fmt.Fprintf(prompt, "   Content: %s\n", snippet(doc.Content))
		}
	}
	prompt.WriteString("\n")
}

// snippet cuts content to SnippetLimit characters, counting runes so multi-byte text is never split.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= SnippetLimit {
		return content
	}
	return string(runes[:SnippetLimit]) + TruncationMarker
}

func (b *contextualBuilder) writeHistory(prompt *strings.Builder) {
	if len(b.history) == 0 {
		return
	}
	prompt.WriteString("RECENT CONVERSATION:\n")
	for _, turn := range b.history {
		label := "User"
		if turn.Role == store.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(prompt, "%s: %s\n", label, turn.Message)
	}
	prompt.WriteString("\n")
}

func (b *contextualBuilder) writeInstructions(prompt *strings.Builder) {
	s := b.session
	prompt.WriteString("INSTRUCTIONS:\n")
	prompt.WriteString("- Answer using the loan documents and session context above.\n")
	fmt.Fprintf(prompt, "- Prioritize the focus area (%s) and the lending conventions of the region (%s).\n",
		orDefault(s.AIFocus, DefaultFocus), orDefault(s.Region, DefaultRegion))
	prompt.WriteString("- If the documents do not contain the information, say so plainly instead of guessing.\n")
	prompt.WriteString("- Keep the answer to 2-4 sentences.\n")
	prompt.WriteString("- Use natural, conversational phrasing that sounds right when spoken aloud; no lists, tables or markdown.\n")
	fmt.Fprintf(prompt, "- Respond in %s.\n\n", orDefault(s.Language, DefaultLanguage))
}

func (b *contextualBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("QUESTION: ")
	prompt.WriteString(b.question)
}

// Package transcript defines the conversation surface shared by every model
// provider driving the report wizard.
package transcript

import "context"

// Role labels a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a wizard conversation.
type Message struct {
	Role    Role   `json:"role" firestore:"role"`
	Content string `json:"content" firestore:"content"`
}

// Options are per-request generation parameters. Zero values defer to the
// provider's configured defaults.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Client generates model responses over a conversation. Stream delivers
// incremental deltas through onDelta while also returning the accumulated
// response, so callers can both relay tokens live and persist the result.
type Client interface {
	Complete(ctx context.Context, system string, msgs []Message, opts Options) (string, error)
	Stream(ctx context.Context, system string, msgs []Message, opts Options, onDelta func(string)) (string, error)
}

// PDFTranscriber is the optional provider capability of reading a PDF's
// visible text directly. Providers without document vision simply do not
// implement it.
type PDFTranscriber interface {
	ExtractPDFText(ctx context.Context, data []byte) (string, error)
}

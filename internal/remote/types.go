package remote

import "context"

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/mattjoyce/voicegw/internal/remote Client

// Operation types the service reports in completion callbacks. Anything
// else is treated as unknown and ignored by the dispatcher.
const (
	OpTransloadAudio     = "transload-audio"
	OpClassifyTranscript = "classify-transcript"
)

// EventOperationComplete is the only webhook event this gateway subscribes to.
const EventOperationComplete = "operation.complete"

// CodeConflict is the remote "already exists" outcome. Re-submissions race
// against prior identical submissions, so a conflict is treated as success.
const CodeConflict = 409

// Operation is a remote unit of asynchronous work. Its terminal state is
// observed only through a callback; it is never mutated or persisted locally.
type Operation struct {
	ID         string          `json:"_id"`
	Type       string          `json:"type"`
	Parameters Parameters      `json:"parameters"`
	Error      *OperationError `json:"error,omitempty"`
	Result     *Result         `json:"result,omitempty"`
}

// Parameters carries the audio reference an operation was submitted with.
type Parameters struct {
	AudioID string `json:"audio_id"`
}

// OperationError reports a failed operation.
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result is present only on success.
type Result struct {
	Document *Document `json:"document,omitempty"`
}

// Document holds references to stored artifacts. Transcript is a document
// reference that must be resolved to a transient link before fetching.
type Document struct {
	Transcript string `json:"transcript,omitempty"`
}

// SpeakerRole maps an audio channel to a conversation role.
type SpeakerRole struct {
	Channel int    `json:"channel"`
	Role    string `json:"role"`
}

// Subscription binds a callback URL to an event type and shared secret.
type Subscription struct {
	ID      string `json:"_id,omitempty"`
	URL     string `json:"url"`
	Event   string `json:"event"`
	Enabled bool   `json:"enabled"`
	Secret  string `json:"secret,omitempty"`
}

// TransloadRequest submits an upload-from-URL operation for existing media.
type TransloadRequest struct {
	AudioID   string   `json:"audio_id"`
	SourceURL string   `json:"url"`
	Tags      []string `json:"tags,omitempty"`
}

// ClassifyRequest submits a transcript classification operation.
type ClassifyRequest struct {
	AudioID   string   `json:"audio_id"`
	Language  string   `json:"language"`
	RedactPII bool     `json:"redact_pii"`
	Tags      []string `json:"tags,omitempty"`
}

// Client is the surface of the remote audio-intelligence service consumed by
// the gateway. All submissions are fire-and-forget: they return the new
// entity or operation identifier without waiting for completion.
type Client interface {
	// CreateMedia registers a new audio entity and returns its identifier.
	CreateMedia(ctx context.Context, roles []SpeakerRole) (string, error)

	// Transload submits an upload-from-URL operation and returns its id.
	Transload(ctx context.Context, req TransloadRequest) (string, error)

	// Classify submits a classification operation and returns its id.
	Classify(ctx context.Context, req ClassifyRequest) (string, error)

	// DocumentLink resolves a document reference to a transient direct URL.
	DocumentLink(ctx context.Context, documentID string) (string, error)

	// ListWebhooks returns enabled subscriptions for an event type.
	ListWebhooks(ctx context.Context, event string) ([]Subscription, error)

	// CreateWebhook registers a new subscription.
	CreateWebhook(ctx context.Context, sub Subscription) (Subscription, error)
}

package webhook

import "github.com/mattjoyce/voicegw/internal/remote"

// Headers the remote service sends with every callback. The challenge value
// must be echoed back verbatim so the sender can confirm the receiver is live.
const (
	SignatureHeader = "X-Hub-Signature"
	ChallengeHeader = "X-Hub-Challenge"
)

// DefaultMaxBodySize caps callback bodies at 1 MB.
const DefaultMaxBodySize = 1048576

// Envelope is the signed callback message. The signature covers the raw
// body bytes, so Envelope is only ever decoded from the verified payload.
type Envelope struct {
	Event Event `json:"event"`
	Data  Data  `json:"data"`
}

// Event identifies the callback kind.
type Event struct {
	Type string `json:"type"`
}

// Data carries event-specific payload. For operation.complete it holds the
// terminal state of the finished operation.
type Data struct {
	Operation remote.Operation `json:"operation"`
}

// ErrorResponse is the JSON body for internal failures.
type ErrorResponse struct {
	Code int    `json:"code"`
	Err  string `json:"err"`
}

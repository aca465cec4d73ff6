// Package webhook receives signed completion callbacks from the remote
// audio-intelligence service and routes them to follow-up work.
//
// # Security Model
//
// - HMAC-SHA1 signatures over the raw request body, verified with
//   crypto/subtle (constant-time comparison)
// - Body size limits enforced to prevent DoS
// - Signature mismatches answered 200 "ignored" with no detail, so a
//   replayed or forged delivery learns nothing and triggers no retries
// - Challenge headers echoed back verbatim to confirm liveness
//
// # Request Flow
//
//  1. HTTP POST arrives at the path derived from the callback URL
//  2. Body size checked (413 if too large)
//  3. HMAC-SHA1 computed over the raw body and compared constant-time
//     (200 "ignored" on mismatch)
//  4. Challenge header echoed into the response
//  5. Envelope decoded; event must be operation.complete
//  6. Outcome decided: unknown event/operation and reported operation
//     failures are logged and answered 200; a 409 conflict is tolerated
//     and dispatched as success
//  7. transload-audio completions submit the follow-up classification;
//     classify-transcript completions stream the transcript to storage
//  8. 200 empty body on success; 5xx JSON {code, err} only for internal
//     faults
//
// Delivery is at-least-once: every branch of the flow is idempotent or
// answered 200 so provider-side retries only fire on genuine faults.
//
// The package also carries the startup Registrar, which idempotently
// ensures the operation.complete subscription exists (list-then-create,
// keyed on owner, event type and URL).
package webhook

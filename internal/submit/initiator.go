// Package submit initiates asynchronous remote operations. Submissions are
// fire-and-forget: they return the new operation identifier immediately and
// completion arrives later through the webhook dispatcher.
package submit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/voicegw/internal/config"
	"github.com/mattjoyce/voicegw/internal/log"
	"github.com/mattjoyce/voicegw/internal/remote"
)

// Fixed channel-to-role mapping for this workflow: two-channel call
// recordings with the agent on channel 0 and the customer on channel 1.
var speakerRoles = []remote.SpeakerRole{
	{Channel: 0, Role: "agent"},
	{Channel: 1, Role: "customer"},
}

// Initiator submits new remote operations.
type Initiator struct {
	client remote.Client
	cfg    config.ClassificationConfig
	logger *slog.Logger
}

// NewInitiator creates an Initiator.
func NewInitiator(client remote.Client, cfg config.ClassificationConfig) *Initiator {
	return &Initiator{
		client: client,
		cfg:    cfg,
		logger: log.WithComponent("submit"),
	}
}

// AnalyzeAudio submits a classification request for transloaded audio,
// tagged with the audio identifier for traceability.
func (i *Initiator) AnalyzeAudio(ctx context.Context, audioID string) (string, error) {
	opID, err := i.client.Classify(ctx, remote.ClassifyRequest{
		AudioID:   audioID,
		Language:  i.cfg.Language,
		RedactPII: i.cfg.RedactPII,
		Tags:      []string{audioID},
	})
	if err != nil {
		return "", fmt.Errorf("submit classification: %w", err)
	}

	i.logger.Info("classification submitted",
		"audio_id", audioID,
		"operation_id", opID,
		"language", i.cfg.Language,
		"redact_pii", i.cfg.RedactPII,
	)
	return opID, nil
}

// Ref is an identifier-only reference to a remote entity.
type Ref struct {
	ID string `json:"_id"`
}

// UploadResult is the offline upload command's output shape.
type UploadResult struct {
	Audio     Ref `json:"audio"`
	Operation Ref `json:"operation"`
}

// Upload registers a new audio entity with the fixed speaker roles, then
// submits an upload-from-URL operation tagged with the audio identifier and
// any caller-supplied tags.
func (i *Initiator) Upload(ctx context.Context, sourceURL string, tags []string) (UploadResult, error) {
	audioID, err := i.client.CreateMedia(ctx, speakerRoles)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create audio: %w", err)
	}

	opID, err := i.client.Transload(ctx, remote.TransloadRequest{
		AudioID:   audioID,
		SourceURL: sourceURL,
		Tags:      append([]string{audioID}, tags...),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("submit transload: %w", err)
	}

	i.logger.Info("upload submitted",
		"audio_id", audioID,
		"operation_id", opID,
		"source_url", sourceURL,
	)
	return UploadResult{
		Audio:     Ref{ID: audioID},
		Operation: Ref{ID: opID},
	}, nil
}

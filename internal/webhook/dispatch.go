package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/voicegw/internal/log"
	"github.com/mattjoyce/voicegw/internal/remote"
)

// Outcome is the decision reached for one verified callback. The ignore
// family is terminal and answered 200 so the sender never retries events
// the gateway intentionally drops.
type Outcome int

const (
	// OutcomeIgnoreEvent means the event type is not operation.complete.
	OutcomeIgnoreEvent Outcome = iota
	// OutcomeIgnoreOperation means the operation type is unknown.
	OutcomeIgnoreOperation
	// OutcomeReportFailure means the operation finished with a non-conflict error.
	OutcomeReportFailure
	// OutcomeDispatchTransload means a transload finished; classification follows.
	OutcomeDispatchTransload
	// OutcomeDispatchClassify means a classification finished; fetch the transcript.
	OutcomeDispatchClassify
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnoreEvent:
		return "ignore-event"
	case OutcomeIgnoreOperation:
		return "ignore-operation"
	case OutcomeReportFailure:
		return "report-failure"
	case OutcomeDispatchTransload:
		return "dispatch-transload"
	case OutcomeDispatchClassify:
		return "dispatch-classify"
	}
	return "unknown"
}

// Decide maps a verified envelope to an outcome. A 409 conflict on the
// operation is tolerated: an identical submission already existed, which is
// the expected result of duplicate delivery, so it falls through to dispatch.
func Decide(env *Envelope) Outcome {
	if env.Event.Type != remote.EventOperationComplete {
		return OutcomeIgnoreEvent
	}

	op := &env.Data.Operation
	if op.Error != nil && op.Error.Code != remote.CodeConflict {
		return OutcomeReportFailure
	}

	switch op.Type {
	case remote.OpTransloadAudio:
		return OutcomeDispatchTransload
	case remote.OpClassifyTranscript:
		return OutcomeDispatchClassify
	default:
		return OutcomeIgnoreOperation
	}
}

// Analyzer submits the follow-up classification for transloaded audio.
type Analyzer interface {
	AnalyzeAudio(ctx context.Context, audioID string) (string, error)
}

// Fetcher retrieves the transcript artifact of a completed classification.
type Fetcher interface {
	Fetch(ctx context.Context, op *remote.Operation) error
}

// Dispatcher executes the outcome of each verified callback. It holds no
// cross-request state; concurrent invocations are independent.
type Dispatcher struct {
	analyzer Analyzer
	fetcher  Fetcher
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(analyzer Analyzer, fetcher Fetcher) *Dispatcher {
	return &Dispatcher{
		analyzer: analyzer,
		fetcher:  fetcher,
		logger:   log.WithComponent("dispatch"),
	}
}

// Handle runs the decision tree for one envelope. Ignore outcomes and
// reported operation failures return nil: the delivery itself succeeded and
// must not be retried. Only failures inside a dispatch branch propagate.
func (d *Dispatcher) Handle(ctx context.Context, env *Envelope) error {
	op := &env.Data.Operation
	outcome := Decide(env)

	logger := d.logger.With(
		"outcome", outcome.String(),
		"operation_id", op.ID,
		"audio_id", op.Parameters.AudioID,
	)

	switch outcome {
	case OutcomeIgnoreEvent:
		logger.Warn("unhandleable event type", "event_type", env.Event.Type)
		return nil

	case OutcomeIgnoreOperation:
		logger.Warn("unhandleable operation type", "operation_type", op.Type)
		return nil

	case OutcomeReportFailure:
		logger.Error("operation failed",
			"operation_type", op.Type,
			"code", op.Error.Code,
			"error", op.Error.Message,
		)
		return nil

	case OutcomeDispatchTransload:
		classifyID, err := d.analyzer.AnalyzeAudio(ctx, op.Parameters.AudioID)
		if err != nil {
			return fmt.Errorf("analyze audio %s: %w", op.Parameters.AudioID, err)
		}
		logger.Info("classification submitted", "classify_operation_id", classifyID)
		return nil

	case OutcomeDispatchClassify:
		if err := d.fetcher.Fetch(ctx, op); err != nil {
			return fmt.Errorf("fetch transcript for %s: %w", op.Parameters.AudioID, err)
		}
		return nil
	}

	return nil
}

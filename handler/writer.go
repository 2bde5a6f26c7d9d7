package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

// Writer handles orchestrator lifecycle notifications. Unrecognized
// payloads are acknowledged as no-ops; only persistence failures surface
// as a 500.
type Writer struct {
	tracker *track.Tracker
	logger  logger.Logger
}

// NewWriter creates the lifecycle event handler.
func NewWriter(tracker *track.Tracker, log logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{tracker: tracker, logger: log}
}

// Handle runs one inbound lifecycle event end to end.
func (w *Writer) Handle(ctx context.Context, raw json.RawMessage) (Response, error) {
	ev, err := track.ParseLifecycleEvent(raw)
	if err != nil {
		if errors.Is(err, track.ErrUnrecognizedInput) {
			w.logger.Warn(ctx, "Ignoring unrecognized event shape", nil)
			return messageResponse(200, "ignored: unrecognized event shape"), nil
		}
		return messageResponse(400, "malformed event"), nil
	}

	decision, err := w.tracker.HandleLifecycleEvent(ctx, ev)
	if err != nil {
		w.logger.Error(ctx, "Status write failed", err, map[string]interface{}{
			"execution_id": ev.Detail.ExecutionID,
		})
		return messageResponse(500, "status write failed"), nil
	}

	if decision.Outcome.Suppressed() {
		return messageResponse(200, fmt.Sprintf("suppressed: %s", decision.Outcome)), nil
	}
	return messageResponse(200, fmt.Sprintf("recorded %s %s/%s",
		decision.Event.ExecutionID, decision.Event.Stage, decision.Event.Status)), nil
}

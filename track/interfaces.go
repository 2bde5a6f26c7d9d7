package track

import (
	"context"
)

// StatusStore defines the persistence operations for execution status
// records. Implementations provide storage backends (DynamoDB in
// production, in-memory fakes in tests).
//
// Both upsert methods create the record when it does not exist. UpsertFull
// writes the topology fields; UpsertStatus must leave any existing
// TotalStages/StageList untouched.
type StatusStore interface {
	// UpsertFull writes the complete record including TotalStages and
	// StageList. Used only for the event that opens an execution.
	UpsertFull(ctx context.Context, rec *ExecutionStatus) error

	// UpsertStatus writes currentStage, status, errorMessage, logUrl, and
	// aiSolution, leaving the topology fields alone.
	UpsertStatus(ctx context.Context, rec *ExecutionStatus) error

	// SetLatest overwrites the latest-execution pointer.
	SetLatest(ctx context.Context, p LatestPointer) error

	// Get retrieves a record by execution id. Returns ErrNotFound when no
	// record exists.
	Get(ctx context.Context, executionID string) (*ExecutionStatus, error)
}

// TopologyAPI looks up a pipeline's declared stage topology from the
// orchestrator.
type TopologyAPI interface {
	// StageNames returns the ordered stage names of the named pipeline.
	StageNames(ctx context.Context, pipelineName string) ([]string, error)
}

// Advisor produces diagnostic guidance for a failure summary. It always
// returns usable text; failures of the underlying service are folded into
// canned fallback messages by the implementation.
type Advisor interface {
	Advise(ctx context.Context, errorSummary string) string
}

// TransitionNotifier delivers a human-readable notification for an
// accepted transition. Delivery is best-effort: implementations log
// failures and never return them.
type TransitionNotifier interface {
	StageTransition(ctx context.Context, ev Event, aiSolution string)
}

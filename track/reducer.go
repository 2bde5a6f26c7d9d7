package track

// Outcome classifies what the state machine decided to do with a lifecycle
// event. Suppressed and ignored events are acknowledged to the source but
// produce no write and no notification.
type Outcome string

const (
	// OutcomeAccepted indicates the event updates the status record
	OutcomeAccepted Outcome = "accepted"

	// OutcomeStageFailureSuppressed indicates a stage-level FAILED event was
	// dropped; the action-level FAILED event that follows carries the real
	// failure headline and must not be pre-empted by the stage event
	OutcomeStageFailureSuppressed Outcome = "stage_failure_suppressed"

	// OutcomeDuplicateActionSuppressed indicates an action-level STARTED or
	// SUCCEEDED event was dropped because the stage-level event already
	// reports the same transition
	OutcomeDuplicateActionSuppressed Outcome = "duplicate_action_suppressed"

	// OutcomeIgnoredDetailType indicates the event's detail-type is not one
	// of the two recognized lifecycle streams
	OutcomeIgnoredDetailType Outcome = "ignored_detail_type"

	// OutcomeUnhandled indicates a recognized stream reported a status this
	// state machine has no transition for
	OutcomeUnhandled Outcome = "unhandled"
)

// Suppressed returns true for outcomes that acknowledge the event without
// updating anything.
func (o Outcome) Suppressed() bool {
	return o != OutcomeAccepted
}

// Decision is the state machine's verdict on one lifecycle event.
type Decision struct {
	// Outcome is the classification; Event is only valid when the outcome
	// is OutcomeAccepted
	Outcome Outcome

	// Event is the normalized event to apply
	Event Event

	// OpensExecution is true for the Source/STARTED event that begins a new
	// execution; it triggers the topology fetch and latest-pointer overwrite
	OpensExecution bool
}

// ErrorSummaryFallback is recorded when a FAILED event carries no
// execution summary.
const ErrorSummaryFallback = "Unknown error (no execution-summary)."

// Reduce applies the suppression rules to a lifecycle event and, when the
// event is accepted, normalizes it.
//
// The stage and action streams overlap in time and would double-report
// without filtering: stage-level FAILED events are suppressed entirely in
// favor of the action-level FAILED that follows with the true failure
// headline, and action-level STARTED/SUCCEEDED events are suppressed as
// duplicates of their stage-level counterparts. Ordering between the two
// streams is assumed, not enforced; the suppression rules are the only
// defense against reordered delivery.
func Reduce(ev *LifecycleEvent) Decision {
	stage := Stage(ev.Detail.Stage)
	status := Status(ev.Detail.State)

	switch ev.DetailType {
	case DetailTypeStage:
		if !status.Known() {
			return Decision{Outcome: OutcomeUnhandled}
		}
		if status == StatusFailed {
			return Decision{Outcome: OutcomeStageFailureSuppressed}
		}
	case DetailTypeAction:
		if !status.Known() {
			return Decision{Outcome: OutcomeUnhandled}
		}
		if status != StatusFailed {
			return Decision{Outcome: OutcomeDuplicateActionSuppressed}
		}
	default:
		return Decision{Outcome: OutcomeIgnoredDetailType}
	}

	out := Event{
		ExecutionID:  ev.Detail.ExecutionID,
		PipelineName: ev.Detail.Pipeline,
		Stage:        stage,
		Status:       status,
		BuildID:      ev.Detail.ExecutionID,
		EventTime:    ev.Time,
	}

	// Action-level FAILED for a build-logged stage: the stage's logs are
	// keyed by the embedded CodeBuild id, not the execution id.
	if ev.DetailType == DetailTypeAction && stage.HasBuildLogs() {
		for _, artifact := range ev.Detail.OutputArtifacts {
			if artifact.CodeBuildID != "" {
				out.BuildID = artifact.CodeBuildID
				break
			}
		}
	}

	if status == StatusFailed {
		out.ErrorSummary = ErrorSummaryFallback
		if ev.Detail.ExecutionResult != nil && ev.Detail.ExecutionResult.ExternalExecutionSummary != "" {
			out.ErrorSummary = ev.Detail.ExecutionResult.ExternalExecutionSummary
		}
	}

	return Decision{
		Outcome:        OutcomeAccepted,
		Event:          out,
		OpensExecution: stage == StageSource && status == StatusStarted,
	}
}

package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
)

// Tracker ties the state machine to its collaborators: it reduces a
// lifecycle event, asks the advisor for guidance on failures, persists the
// resulting record, and hands the transition to the notifier.
//
// The advisor and notifier are best-effort side channels: their absence or
// failure never aborts the persistence write. Store errors are the only
// errors the tracker propagates.
type Tracker struct {
	store    StatusStore
	topology TopologyAPI
	advisor  Advisor
	notifier TransitionNotifier
	logURLs  LogURLBuilder
	logger   logger.Logger
}

// NewTracker creates a tracker with its dependencies. The advisor and
// notifier may be nil, which disables diagnostics and notifications
// respectively. A nil logger defaults to the no-op logger.
func NewTracker(
	store StatusStore,
	topology TopologyAPI,
	advisor Advisor,
	notifier TransitionNotifier,
	logURLs LogURLBuilder,
	log logger.Logger,
) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{
		store:    store,
		topology: topology,
		advisor:  advisor,
		notifier: notifier,
		logURLs:  logURLs,
		logger:   log,
	}
}

// HandleLifecycleEvent runs one lifecycle event through the state machine
// and applies the decision. Suppressed events return immediately with the
// decision and no error. The returned error is non-nil only for store
// failures on the primary write path.
func (t *Tracker) HandleLifecycleEvent(ctx context.Context, ev *LifecycleEvent) (Decision, error) {
	decision := Reduce(ev)
	if decision.Outcome.Suppressed() {
		t.logger.Info(ctx, "Suppressed lifecycle event", map[string]interface{}{
			"outcome":      string(decision.Outcome),
			"detail_type":  ev.DetailType,
			"stage":        ev.Detail.Stage,
			"state":        ev.Detail.State,
			"execution_id": ev.Detail.ExecutionID,
		})
		return decision, nil
	}

	evt := decision.Event
	ctx, span := StartSpan(ctx, "HandleLifecycleEvent", evt.ExecutionID)
	defer span.End()

	// Diagnostics run before the write so the solution lands in the same
	// upsert as the failure it explains.
	aiSolution := ""
	if evt.Status.IsFailure() && t.advisor != nil {
		aiSolution = t.advisor.Advise(ctx, evt.ErrorSummary)
	}

	rec := &ExecutionStatus{
		ExecutionID:  evt.ExecutionID,
		CurrentStage: evt.Stage.String(),
		Status:       evt.Status.String(),
		ErrorMessage: evt.ErrorSummary,
		LogURL:       t.logURLs.Build(evt.Stage, evt.BuildID),
		AISolution:   aiSolution,
	}

	if err := t.persist(ctx, decision, rec, evt); err != nil {
		return decision, err
	}

	if t.notifier != nil {
		t.notifier.StageTransition(ctx, evt, aiSolution)
	}

	return decision, nil
}

// persist applies the write path for an accepted event.
//
// The opening event additionally overwrites the latest-execution pointer
// and records the pipeline's topology. When the topology fetch fails the
// write degrades to the update-only field set; the pointer is still
// overwritten so downstream consumers learn about the new execution, and
// the topology fields stay absent for the execution's lifetime.
func (t *Tracker) persist(ctx context.Context, decision Decision, rec *ExecutionStatus, evt Event) error {
	if !decision.OpensExecution {
		if err := t.store.UpsertStatus(ctx, rec); err != nil {
			return NewTrackError("upsert", rec.ExecutionID, err)
		}
		return nil
	}

	if err := t.store.SetLatest(ctx, LatestPointer{
		LatestExecutionID: evt.ExecutionID,
		LastStartTime:     evt.EventTime,
	}); err != nil {
		return NewTrackError("set latest pointer", evt.ExecutionID, err)
	}

	stages, err := t.stageTopology(ctx, evt.PipelineName)
	if err != nil {
		t.logger.Warn(ctx, "Topology fetch failed, recording status without stage list", map[string]interface{}{
			"pipeline":     evt.PipelineName,
			"execution_id": evt.ExecutionID,
			"error":        err.Error(),
		})
		if err := t.store.UpsertStatus(ctx, rec); err != nil {
			return NewTrackError("upsert", rec.ExecutionID, err)
		}
		return nil
	}

	rec.TotalStages = len(stages)
	rec.StageList = stages
	t.logger.Info(ctx, "Recorded pipeline topology", map[string]interface{}{
		"execution_id": evt.ExecutionID,
		"total_stages": rec.TotalStages,
		"stage_list":   rec.StageList,
	})
	if err := t.store.UpsertFull(ctx, rec); err != nil {
		return NewTrackError("upsert", rec.ExecutionID, err)
	}
	return nil
}

// stageTopology fetches the ordered stage names, folding a missing
// topology API into ErrTopologyUnavailable.
func (t *Tracker) stageTopology(ctx context.Context, pipelineName string) ([]string, error) {
	if t.topology == nil {
		return nil, ErrTopologyUnavailable
	}
	stages, err := t.topology.StageNames(ctx, pipelineName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTopologyUnavailable, err)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: pipeline %q declares no stages", ErrTopologyUnavailable, pipelineName)
	}
	return stages, nil
}

// Get retrieves a stored status record by execution id.
func (t *Tracker) Get(ctx context.Context, executionID string) (*ExecutionStatus, error) {
	rec, err := t.store.Get(ctx, executionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, NewTrackError("get", executionID, err)
	}
	return rec, nil
}

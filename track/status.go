package track

// Stage names a phase within a pipeline execution's declared topology.
// The set is open: the orchestrator may report stages this package has no
// special handling for, so Known distinguishes the stages the state machine
// and log reference builder treat specially.
type Stage string

const (
	// StageSource is the first stage of an execution; its STARTED event
	// marks the beginning of a new execution.
	StageSource Stage = "Source"

	// StageBuild is the build stage, logged by CodeBuild.
	StageBuild Stage = "Build"

	// StageDeploy is the deploy stage; its SUCCEEDED event triggers the
	// post-deploy health validation.
	StageDeploy Stage = "Deploy"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Known returns true if the stage is one of the stages this package
// handles specially.
func (s Stage) Known() bool {
	switch s {
	case StageSource, StageBuild, StageDeploy:
		return true
	default:
		return false
	}
}

// HasBuildLogs returns true for stages whose logs are keyed by a CodeBuild
// build id rather than the execution id.
func (s Stage) HasBuildLogs() bool {
	return s == StageBuild || s == StageDeploy
}

// Status is the lifecycle status of a stage or action execution as reported
// by the orchestrator.
type Status string

const (
	// StatusStarted indicates the stage or action began executing
	StatusStarted Status = "STARTED"

	// StatusInProgress indicates the stage or action is still executing
	StatusInProgress Status = "IN_PROGRESS"

	// StatusSucceeded indicates the stage or action completed successfully
	StatusSucceeded Status = "SUCCEEDED"

	// StatusFailed indicates the stage or action failed
	StatusFailed Status = "FAILED"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Known returns true if the status is one of the recognized lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusStarted, StatusInProgress, StatusSucceeded, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed:
		return true
	case StatusStarted, StatusInProgress:
		return false
	default:
		return false
	}
}

// IsFailure returns true if the status indicates failure.
func (s Status) IsFailure() bool {
	return s == StatusFailed
}

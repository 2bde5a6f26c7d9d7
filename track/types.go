// Package track is the core of deploytrack: it normalizes pipeline
// lifecycle events into a canonical status record, decides through a small
// state machine which events update the record and which are suppressed,
// and persists the result to the status store.
package track

// LatestPointerKey is the fixed partition key of the singleton record that
// points at the most recently started execution. Downstream consumers read
// it to discover what is currently deploying without scanning the table.
const LatestPointerKey = "LATEST_EXECUTION"

// ExecutionStatus is the canonical status record for one pipeline
// execution, keyed by the execution id.
//
// TotalStages and StageList are written exactly once, on the
// Source/STARTED event that opens the execution, and are never overwritten
// by later events. Every other field is replaced on each accepted event.
type ExecutionStatus struct {
	// ExecutionID is the opaque execution identifier and partition key
	ExecutionID string `json:"pipelineID" dynamodbav:"pipelineID"`

	// CurrentStage is the stage the execution most recently reported from
	CurrentStage string `json:"currentStage,omitempty" dynamodbav:"currentStage"`

	// Status is the execution's lifecycle status at CurrentStage
	Status string `json:"status,omitempty" dynamodbav:"status"`

	// ErrorMessage is the failure summary; empty unless Status is FAILED
	ErrorMessage string `json:"errorMessage,omitempty" dynamodbav:"errorMessage"`

	// LogURL is the external log viewer URL, or empty when no log applies
	LogURL string `json:"logUrl,omitempty" dynamodbav:"logUrl"`

	// AISolution is the generated diagnostic text, or empty
	AISolution string `json:"aiSolution,omitempty" dynamodbav:"aiSolution"`

	// TotalStages is the count of stages in the pipeline's declared topology
	TotalStages int `json:"totalStages,omitempty" dynamodbav:"totalStages"`

	// StageList is the ordered list of stage names in the topology
	StageList []string `json:"stageList,omitempty" dynamodbav:"stageList"`
}

// LatestPointer is the singleton record identifying the most recently
// started execution. It is overwritten every time a new execution begins.
type LatestPointer struct {
	// LatestExecutionID is the execution id of the newest execution
	LatestExecutionID string `json:"latestExecutionId" dynamodbav:"latestExecutionId"`

	// LastStartTime is the orchestrator timestamp of the opening event
	LastStartTime string `json:"lastStartTime" dynamodbav:"lastStartTime"`
}

// Event is a normalized lifecycle event. It is constructed fresh per
// inbound event and never persisted.
type Event struct {
	// ExecutionID is the pipeline execution identifier
	ExecutionID string

	// PipelineName is the orchestrator's pipeline name, needed for the
	// topology lookup on the opening event
	PipelineName string

	// Stage is the stage the event reports on
	Stage Stage

	// Status is the reported lifecycle status
	Status Status

	// BuildID keys the stage's logs; defaults to the execution id and is
	// replaced by an embedded CodeBuild id when one is present
	BuildID string

	// ErrorSummary is the failure headline; set only on FAILED events
	ErrorSummary string

	// EventTime is the orchestrator timestamp of the event
	EventTime string
}

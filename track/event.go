package track

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// Recognized detail-type discriminators on orchestrator lifecycle events.
// Any other detail-type is ignored.
const (
	DetailTypeStage  = "CodePipeline Stage Execution State Change"
	DetailTypeAction = "CodePipeline Action Execution State Change"
)

// LifecycleEvent is the EventBridge envelope for a CodePipeline stage or
// action execution state change.
type LifecycleEvent struct {
	DetailType string          `json:"detail-type"`
	Detail     LifecycleDetail `json:"detail"`
	Time       string          `json:"time"`
}

// LifecycleDetail is the orchestrator-specific payload of a lifecycle event.
type LifecycleDetail struct {
	ExecutionID     string           `json:"execution-id"`
	Pipeline        string           `json:"pipeline"`
	Stage           string           `json:"stage"`
	State           string           `json:"state"`
	ExecutionResult *ExecutionResult `json:"execution-result,omitempty"`
	OutputArtifacts []OutputArtifact `json:"output-artifacts,omitempty"`
}

// ExecutionResult carries the failure headline on FAILED action events.
type ExecutionResult struct {
	ExternalExecutionSummary string `json:"external-execution-summary"`
}

// OutputArtifact is one entry of an action event's output-artifact list.
// CodeBuild actions embed the build id that keys their logs.
type OutputArtifact struct {
	Name        string `json:"name"`
	CodeBuildID string `json:"codeBuildId,omitempty"`
}

// ParseLifecycleEvent decodes an inbound payload as an orchestrator
// lifecycle event. A payload without a detail-type or execution id is not a
// lifecycle event and yields ErrUnrecognizedInput.
func ParseLifecycleEvent(raw json.RawMessage) (*LifecycleEvent, error) {
	var ev LifecycleEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, ErrUnrecognizedInput
	}
	if ev.DetailType == "" || ev.Detail.ExecutionID == "" {
		return nil, ErrUnrecognizedInput
	}
	return &ev, nil
}

// DecodeAttributeMap converts a type-tagged attribute map (the key-value
// store's change-record wire format) into an ExecutionStatus. Each known
// field is unwrapped individually; a field whose tag is missing, malformed,
// or of an unexpected type is silently omitted rather than failing the
// whole record.
func DecodeAttributeMap(item map[string]events.DynamoDBAttributeValue) *ExecutionStatus {
	rec := &ExecutionStatus{}

	rec.ExecutionID = stringAttr(item, "pipelineID")
	rec.CurrentStage = stringAttr(item, "currentStage")
	rec.Status = stringAttr(item, "status")
	rec.ErrorMessage = stringAttr(item, "errorMessage")
	rec.LogURL = stringAttr(item, "logUrl")
	rec.AISolution = stringAttr(item, "aiSolution")

	if av, ok := item["totalStages"]; ok && av.DataType() == events.DataTypeNumber {
		if n, err := av.Integer(); err == nil {
			rec.TotalStages = int(n)
		}
	}
	if av, ok := item["stageList"]; ok && av.DataType() == events.DataTypeList {
		for _, el := range av.List() {
			if el.DataType() == events.DataTypeString {
				rec.StageList = append(rec.StageList, el.String())
			}
		}
	}

	return rec
}

// stringAttr unwraps a string-tagged attribute, returning "" when the field
// is absent or carries a different tag.
func stringAttr(item map[string]events.DynamoDBAttributeValue, name string) string {
	av, ok := item[name]
	if !ok || av.DataType() != events.DataTypeString {
		return ""
	}
	return av.String()
}

// ParseStatusPayload decodes a direct status payload into an
// ExecutionStatus. Two shapes are accepted: the type-tagged change-record
// map, and the plain JSON form with pipelineID as a bare string (used by
// test invocations). Anything else yields ErrUnrecognizedInput.
func ParseStatusPayload(raw json.RawMessage) (*ExecutionStatus, error) {
	// Type-tagged form first: the tagged wire format is unambiguous.
	var tagged map[string]events.DynamoDBAttributeValue
	if err := json.Unmarshal(raw, &tagged); err == nil {
		if av, ok := tagged["pipelineID"]; ok && av.DataType() == events.DataTypeString {
			return DecodeAttributeMap(tagged), nil
		}
	}

	var rec ExecutionStatus
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, ErrUnrecognizedInput
	}
	if rec.ExecutionID == "" {
		return nil, ErrUnrecognizedInput
	}
	return &rec, nil
}

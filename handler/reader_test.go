package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/MyCarrier-DevOps/deploytrack/track"
)

func lookupRequest(pipelineID string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{PathParameters: map[string]string{}}
	if pipelineID != "" {
		req.PathParameters["pipelineId"] = pipelineID
	}
	return req
}

func TestReaderMissingParameter(t *testing.T) {
	r := NewReader(newMemStore(), nil)

	resp, err := r.Handle(context.Background(), lookupRequest(""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(resp.Body, "pipelineId") {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestReaderNotFound(t *testing.T) {
	r := NewReader(newMemStore(), nil)

	resp, err := r.Handle(context.Background(), lookupRequest("missing"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
}

func TestReaderFound(t *testing.T) {
	store := newMemStore()
	store.records["exec-1"] = &track.ExecutionStatus{
		ExecutionID:  "exec-1",
		CurrentStage: "Deploy",
		Status:       "SUCCEEDED",
		TotalStages:  3,
		StageList:    []string{"Source", "Build", "Deploy"},
	}
	r := NewReader(store, nil)

	resp, err := r.Handle(context.Background(), lookupRequest("exec-1"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}

	var rec track.ExecutionStatus
	if err := json.Unmarshal([]byte(resp.Body), &rec); err != nil {
		t.Fatalf("body is not a record: %v", err)
	}
	if rec.ExecutionID != "exec-1" || rec.TotalStages != 3 {
		t.Errorf("record = %+v", rec)
	}
}

func TestReaderStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("table offline")
	r := NewReader(store, nil)

	resp, err := r.Handle(context.Background(), lookupRequest("exec-1"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
}

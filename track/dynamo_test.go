package track

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo records update inputs and serves scripted get results.
type fakeDynamo struct {
	updates []*dynamodb.UpdateItemInput
	getItem map[string]types.AttributeValue
	getErr  error
	updErr  error
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, params)
	if f.updErr != nil {
		return nil, f.updErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func TestDynamoStoreUpsertStatusExpression(t *testing.T) {
	client := &fakeDynamo{}
	store := NewDynamoStore(client, "status-table", nil)

	err := store.UpsertStatus(context.Background(), &ExecutionStatus{
		ExecutionID:  "exec-1",
		CurrentStage: "Build",
		Status:       "STARTED",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(client.updates) != 1 {
		t.Fatalf("updates = %d", len(client.updates))
	}
	input := client.updates[0]
	if *input.TableName != "status-table" {
		t.Errorf("TableName = %q", *input.TableName)
	}
	key := input.Key[pkName].(*types.AttributeValueMemberS)
	if key.Value != "exec-1" {
		t.Errorf("key = %q", key.Value)
	}

	expr := *input.UpdateExpression
	if strings.Contains(expr, "totalStages") || strings.Contains(expr, "stageList") {
		t.Errorf("status upsert must not touch topology fields: %q", expr)
	}
	// status is a reserved word, addressed through an attribute name alias
	if input.ExpressionAttributeNames["#s"] != "status" {
		t.Errorf("names = %v", input.ExpressionAttributeNames)
	}
}

func TestDynamoStoreUpsertFullIncludesTopology(t *testing.T) {
	client := &fakeDynamo{}
	store := NewDynamoStore(client, "status-table", nil)

	err := store.UpsertFull(context.Background(), &ExecutionStatus{
		ExecutionID: "exec-1",
		TotalStages: 3,
		StageList:   []string{"Source", "Build", "Deploy"},
	})
	if err != nil {
		t.Fatal(err)
	}

	input := client.updates[0]
	expr := *input.UpdateExpression
	if !strings.Contains(expr, "totalStages") || !strings.Contains(expr, "stageList") {
		t.Errorf("full upsert must write topology fields: %q", expr)
	}
	count := input.ExpressionAttributeValues[":tc"].(*types.AttributeValueMemberN)
	if count.Value != "3" {
		t.Errorf("totalStages = %q", count.Value)
	}
	list := input.ExpressionAttributeValues[":sl"].(*types.AttributeValueMemberL)
	if len(list.Value) != 3 {
		t.Errorf("stageList entries = %d", len(list.Value))
	}
}

func TestDynamoStoreSetLatest(t *testing.T) {
	client := &fakeDynamo{}
	store := NewDynamoStore(client, "status-table", nil)

	err := store.SetLatest(context.Background(), LatestPointer{
		LatestExecutionID: "exec-9",
		LastStartTime:     "2026-08-23T10:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	input := client.updates[0]
	key := input.Key[pkName].(*types.AttributeValueMemberS)
	if key.Value != LatestPointerKey {
		t.Errorf("pointer key = %q, want fixed key", key.Value)
	}
	pid := input.ExpressionAttributeValues[":pid"].(*types.AttributeValueMemberS)
	if pid.Value != "exec-9" {
		t.Errorf("latestExecutionId = %q", pid.Value)
	}
}

func TestDynamoStoreGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := &fakeDynamo{getItem: map[string]types.AttributeValue{
			"pipelineID":   &types.AttributeValueMemberS{Value: "exec-1"},
			"currentStage": &types.AttributeValueMemberS{Value: "Deploy"},
			"totalStages":  &types.AttributeValueMemberN{Value: "3"},
		}}
		store := NewDynamoStore(client, "status-table", nil)

		rec, err := store.Get(context.Background(), "exec-1")
		if err != nil {
			t.Fatal(err)
		}
		if rec.ExecutionID != "exec-1" || rec.CurrentStage != "Deploy" || rec.TotalStages != 3 {
			t.Errorf("record = %+v", rec)
		}
	})

	t.Run("not found", func(t *testing.T) {
		store := NewDynamoStore(&fakeDynamo{}, "status-table", nil)
		_, err := store.Get(context.Background(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("client error", func(t *testing.T) {
		store := NewDynamoStore(&fakeDynamo{getErr: errors.New("offline")}, "status-table", nil)
		_, err := store.Get(context.Background(), "exec-1")
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want wrapped client error", err)
		}
	})
}

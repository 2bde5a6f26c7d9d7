package track

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
)

// pkName is the partition key attribute of the status table.
const pkName = "pipelineID"

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore is the DynamoDB-backed StatusStore. All writes are update
// expressions so an upsert only touches the attributes it names; the
// topology fields survive every UpsertStatus unchanged.
type DynamoStore struct {
	client DynamoAPI
	table  string
	logger logger.Logger
}

// Ensure DynamoStore implements StatusStore.
var _ StatusStore = (*DynamoStore)(nil)

// NewDynamoStore creates a store over the given client and table.
func NewDynamoStore(client DynamoAPI, table string, log logger.Logger) *DynamoStore {
	if log == nil {
		log = logger.Nop()
	}
	return &DynamoStore{
		client: client,
		table:  table,
		logger: log,
	}
}

// UpsertStatus writes the per-event fields, leaving TotalStages and
// StageList untouched.
func (s *DynamoStore) UpsertStatus(ctx context.Context, rec *ExecutionStatus) error {
	return s.update(ctx, rec.ExecutionID,
		"SET currentStage = :stage, #s = :status, errorMessage = :errMsg, logUrl = :lUrl, aiSolution = :ai",
		map[string]string{"#s": "status"},
		map[string]types.AttributeValue{
			":stage":  str(rec.CurrentStage),
			":status": str(rec.Status),
			":errMsg": str(rec.ErrorMessage),
			":lUrl":   str(rec.LogURL),
			":ai":     str(rec.AISolution),
		},
	)
}

// UpsertFull writes the complete record including the topology fields.
// Used only for the event that opens an execution.
func (s *DynamoStore) UpsertFull(ctx context.Context, rec *ExecutionStatus) error {
	stageList := make([]types.AttributeValue, 0, len(rec.StageList))
	for _, name := range rec.StageList {
		stageList = append(stageList, str(name))
	}
	return s.update(ctx, rec.ExecutionID,
		"SET currentStage = :stage, #s = :status, errorMessage = :errMsg, logUrl = :lUrl, aiSolution = :ai, totalStages = :tc, stageList = :sl",
		map[string]string{"#s": "status"},
		map[string]types.AttributeValue{
			":stage":  str(rec.CurrentStage),
			":status": str(rec.Status),
			":errMsg": str(rec.ErrorMessage),
			":lUrl":   str(rec.LogURL),
			":ai":     str(rec.AISolution),
			":tc":     &types.AttributeValueMemberN{Value: strconv.Itoa(rec.TotalStages)},
			":sl":     &types.AttributeValueMemberL{Value: stageList},
		},
	)
}

// SetLatest overwrites the latest-execution pointer record.
func (s *DynamoStore) SetLatest(ctx context.Context, p LatestPointer) error {
	return s.update(ctx, LatestPointerKey,
		"SET latestExecutionId = :pid, lastStartTime = :time",
		nil,
		map[string]types.AttributeValue{
			":pid":  str(p.LatestExecutionID),
			":time": str(p.LastStartTime),
		},
	)
}

// Get retrieves a record by execution id, returning ErrNotFound when the
// table has no item for it.
func (s *DynamoStore) Get(ctx context.Context, executionID string) (*ExecutionStatus, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.table,
		Key: map[string]types.AttributeValue{
			pkName: str(executionID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var rec ExecutionStatus
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

func (s *DynamoStore) update(
	ctx context.Context,
	key, expr string,
	names map[string]string,
	values map[string]types.AttributeValue,
) error {
	input := &dynamodb.UpdateItemInput{
		TableName: &s.table,
		Key: map[string]types.AttributeValue{
			pkName: str(key),
		},
		UpdateExpression:          &expr,
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item %q: %w", key, err)
	}
	s.logger.Debug(ctx, "Updated status record", map[string]interface{}{
		"key": key,
	})
	return nil
}

func str(v string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: v}
}

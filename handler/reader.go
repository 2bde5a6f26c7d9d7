package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

// RecordGetter is the read-only store surface the reader needs.
type RecordGetter interface {
	Get(ctx context.Context, executionID string) (*track.ExecutionStatus, error)
}

// Reader serves status lookups by execution id from the API gateway.
type Reader struct {
	store  RecordGetter
	logger logger.Logger
}

// NewReader creates the lookup handler.
func NewReader(store RecordGetter, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{store: store, logger: log}
}

// Handle serves one lookup request. The pipelineId path parameter selects
// the record; 400 when missing, 404 when no record exists, 500 on a store
// failure.
func (r *Reader) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (Response, error) {
	pipelineID, ok := req.PathParameters["pipelineId"]
	if !ok || pipelineID == "" {
		return messageResponse(400, "Error: 'pipelineId' missing from path parameters."), nil
	}

	rec, err := r.store.Get(ctx, pipelineID)
	if err != nil {
		if errors.Is(err, track.ErrNotFound) {
			return messageResponse(404, fmt.Sprintf("Item not found for pipelineId: %s", pipelineID)), nil
		}
		r.logger.Error(ctx, "Status lookup failed", err, map[string]interface{}{
			"execution_id": pipelineID,
		})
		return messageResponse(500, "Internal server error"), nil
	}

	return jsonResponse(200, rec), nil
}

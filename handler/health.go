package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/MyCarrier-DevOps/deploytrack/healthcheck"
	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/notify"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

// Health handles the three post-deploy event shapes: the ack-only HTTP
// URL lookup, the store change batch, and the direct status payload. The
// latter two feed the validation loop when they report Deploy/SUCCEEDED.
type Health struct {
	validator *healthcheck.Validator
	notifier  *notify.Notifier
	envName   string
	checkURL  string
	logger    logger.Logger
}

// NewHealth creates the validation handler. envName is the display
// identifier of the target environment; empty means no environment is
// configured, which is a hard configuration error once validation is
// actually triggered. checkURL overrides URL auto-discovery when set.
func NewHealth(validator *healthcheck.Validator, notifier *notify.Notifier, envName, checkURL string, log logger.Logger) *Health {
	if log == nil {
		log = logger.Nop()
	}
	return &Health{
		validator: validator,
		notifier:  notifier,
		envName:   envName,
		checkURL:  checkURL,
		logger:    log,
	}
}

// eventProbe sniffs which inbound shape a payload carries.
type eventProbe struct {
	RequestContext *struct {
		HTTP *struct {
			Method string `json:"method"`
			Path   string `json:"path"`
		} `json:"http"`
	} `json:"requestContext"`
	Records []json.RawMessage `json:"Records"`
}

// Handle dispatches one inbound event by shape.
func (h *Health) Handle(ctx context.Context, raw json.RawMessage) (Response, error) {
	var probe eventProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return messageResponse(400, "Invalid event format"), nil
	}

	if probe.RequestContext != nil && probe.RequestContext.HTTP != nil {
		return h.handleURLLookup(ctx)
	}
	if len(probe.Records) > 0 {
		return h.handleChangeBatch(ctx, raw)
	}
	return h.handleDirectPayload(ctx, raw)
}

// handleURLLookup serves the ack-only environment URL request.
func (h *Health) handleURLLookup(ctx context.Context) (Response, error) {
	checkURL, err := h.resolveCheckURL(ctx)
	if err != nil {
		h.logger.Error(ctx, "Environment URL lookup failed", err, nil)
		return messageResponse(500, "Failed to retrieve Beanstalk environment URL."), nil
	}
	return jsonResponse(200, map[string]string{
		"message":      "Beanstalk environment URL retrieved.",
		"beanstalkUrl": checkURL,
	}), nil
}

// handleChangeBatch walks a store change batch, validating each inserted
// or modified record. The first record that triggers validation decides
// the response.
func (h *Health) handleChangeBatch(ctx context.Context, raw json.RawMessage) (Response, error) {
	var batch events.DynamoDBEvent
	if err := json.Unmarshal(raw, &batch); err != nil {
		return messageResponse(400, "Invalid event format"), nil
	}

	for _, record := range batch.Records {
		if record.EventName != "INSERT" && record.EventName != "MODIFY" {
			h.logger.Debug(ctx, "Skipping change record", map[string]interface{}{
				"event_name": record.EventName,
			})
			continue
		}
		rec := track.DecodeAttributeMap(record.Change.NewImage)
		resp, validated, err := h.validateRecord(ctx, rec)
		if validated || err != nil {
			return resp, err
		}
	}
	return messageResponse(200, "Processed all records"), nil
}

// handleDirectPayload validates a direct status payload.
func (h *Health) handleDirectPayload(ctx context.Context, raw json.RawMessage) (Response, error) {
	rec, err := track.ParseStatusPayload(raw)
	if err != nil {
		return messageResponse(400, "Invalid event format"), nil
	}
	resp, _, err := h.validateRecord(ctx, rec)
	return resp, err
}

// validateRecord runs the validation loop for one status record when it
// reports Deploy/SUCCEEDED. The second return value reports whether
// validation actually ran (as opposed to a skip).
func (h *Health) validateRecord(ctx context.Context, rec *track.ExecutionStatus) (Response, bool, error) {
	if rec.CurrentStage != track.StageDeploy.String() {
		return messageResponse(200, fmt.Sprintf("Skipped - not Deploy stage (current: %s)", rec.CurrentStage)), false, nil
	}
	if rec.Status != track.StatusSucceeded.String() {
		return messageResponse(200, fmt.Sprintf("Skipped - status is %s", rec.Status)), false, nil
	}

	h.logger.Info(ctx, "Deploy succeeded, starting validation", map[string]interface{}{
		"execution_id": rec.ExecutionID,
	})
	ctx, span := track.StartSpan(ctx, "ValidateDeployment", rec.ExecutionID)
	defer span.End()

	if h.envName == "" {
		return h.configError(ctx, "Neither BEANSTALK_ENV_ID nor BEANSTALK_ENV_NAME is set in environment variables")
	}

	checkURL, err := h.resolveCheckURL(ctx)
	if err != nil {
		return h.configError(ctx, fmt.Sprintf("Failed to auto-detect CHECK_URL: %s\nPlease set CHECK_URL in environment variables.", err))
	}

	res := h.validator.Validate(ctx, checkURL)
	if h.notifier != nil {
		h.notifier.ValidationResult(ctx, rec.ExecutionID, h.envName, notify.ValidationOutcome{
			Success:  res.Success,
			Reason:   res.Reason,
			CheckURL: res.CheckURL,
			LogURL:   rec.LogURL,
		})
	}

	if !res.Success {
		return jsonResponse(500, map[string]string{
			"status": "failed",
			"reason": res.Reason,
		}), true, nil
	}
	return jsonResponse(200, map[string]string{"status": "success"}), true, nil
}

// resolveCheckURL prefers the configured URL over auto-discovery.
func (h *Health) resolveCheckURL(ctx context.Context) (string, error) {
	if h.checkURL != "" {
		return h.checkURL, nil
	}
	return h.validator.ResolveCheckURL(ctx)
}

// configError notifies the misconfiguration best-effort, then raises it to
// the caller as a hard failure.
func (h *Health) configError(ctx context.Context, detail string) (Response, bool, error) {
	h.logger.Error(ctx, "Validation misconfigured", fmt.Errorf("%s", detail), nil)
	if h.notifier != nil {
		h.notifier.ConfigError(ctx, detail)
	}
	return Response{}, true, fmt.Errorf("configuration error: %s", detail)
}

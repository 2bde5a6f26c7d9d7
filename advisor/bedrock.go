// Package advisor asks a generative-text service to explain a pipeline
// failure. It is a best-effort side channel: every failure mode folds into
// a canned guidance string, so callers always get usable text and never an
// error.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
)

// Retry policy for rate-limited invocations. Only throttling is retried;
// any other failure class aborts immediately.
const (
	maxAttempts = 3
	baseDelay   = 2 * time.Second
)

// Canned guidance returned when the service cannot be used. Categorized by
// failure-class substrings in the error text.
const (
	fallbackInvalidModel  = "모델 ID가 잘못되었거나 해당 리전에서 사용할 수 없는 모델입니다."
	fallbackAccessDenied  = "Bedrock 모델 액세스 권한이 없습니다. IAM 정책을 확인하세요."
	fallbackModelNotFound = "요청한 모델을 찾을 수 없습니다. 모델 ID와 리전을 확인하세요."
	fallbackEmptyText     = "AI가 응답을 생성하지 못했습니다."
	fallbackBadResponse   = "AI 응답 형식이 올바르지 않습니다."
)

const promptTemplate = `AWS CodePipeline 빌드가 실패했습니다.
실패 요약: %q
이 오류의 의미가 무엇이며, 어떻게 해결할 수 있는지 3줄 요약으로 한국어로 설명해주세요.`

// BedrockAPI is the subset of the Bedrock runtime client the advisor uses.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockAdvisor produces failure diagnostics via the Bedrock runtime.
type BedrockAdvisor struct {
	client  BedrockAPI
	modelID string
	logger  logger.Logger

	// wait blocks for the backoff delay; replaced in tests
	wait func(ctx context.Context, d time.Duration) error
}

// NewBedrockAdvisor creates an advisor for the given model.
// A nil logger defaults to the no-op logger.
func NewBedrockAdvisor(client BedrockAPI, modelID string, log logger.Logger) *BedrockAdvisor {
	if log == nil {
		log = logger.Nop()
	}
	return &BedrockAdvisor{
		client:  client,
		modelID: modelID,
		logger:  log,
		wait:    sleepCtx,
	}
}

// messagesRequest is the anthropic-messages invocation body.
type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Text string `json:"text"`
}

// Advise asks the model to explain the failure summary. Up to three
// attempts are made, backing off baseDelay*2^attempt on throttling;
// any other failure aborts immediately. Exhausted retries and
// non-retryable failures both produce a categorized canned message, so the
// returned string is always non-empty.
func (a *BedrockAdvisor) Advise(ctx context.Context, errorSummary string) string {
	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        500,
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, errorSummary)},
		},
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		return fallbackFor(err)
	}

	a.logger.Info(ctx, "Requesting failure diagnostic", map[string]interface{}{
		"model_id": a.modelID,
	})

	var out *bedrockruntime.InvokeModelOutput
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err = a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			Body:        body,
			ModelId:     aws.String(a.modelID),
			ContentType: aws.String("application/json"),
			Accept:      aws.String("application/json"),
		})
		if err == nil {
			break
		}
		if !isThrottling(err) || attempt == maxAttempts-1 {
			a.logger.Error(ctx, "Diagnostic call failed", err, map[string]interface{}{
				"attempt": attempt + 1,
			})
			return fallbackFor(err)
		}

		delay := baseDelay * (1 << attempt)
		a.logger.Warn(ctx, "Diagnostic call throttled, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
		})
		if waitErr := a.wait(ctx, delay); waitErr != nil {
			return fallbackFor(err)
		}
	}

	return a.parseResponse(ctx, out.Body)
}

// parseResponse extracts the generated text, substituting fixed fallbacks
// for empty or malformed responses.
func (a *BedrockAdvisor) parseResponse(ctx context.Context, body []byte) string {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Content) == 0 {
		return fallbackBadResponse
	}
	text := resp.Content[0].Text
	if text == "" {
		return fallbackEmptyText
	}
	a.logger.Debug(ctx, "Diagnostic generated", map[string]interface{}{
		"chars": len(text),
	})
	return text
}

// isThrottling reports whether the error is a rate-limit-class failure.
func isThrottling(err error) bool {
	var te *types.ThrottlingException
	if errors.As(err, &te) {
		return true
	}
	return strings.Contains(err.Error(), "ThrottlingException")
}

// fallbackFor categorizes a failure by known substrings in the error text.
func fallbackFor(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ValidationException"):
		return fallbackInvalidModel
	case strings.Contains(msg, "AccessDeniedException"):
		return fallbackAccessDenied
	case strings.Contains(msg, "ResourceNotFoundException"):
		return fallbackModelNotFound
	default:
		return "Bedrock AI 호출 실패: " + msg
	}
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

package notify

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

// RecordSource reads back a persisted status record. The FAILED template
// includes the log URL from the stored record rather than the in-flight
// value, so the message reflects exactly what was written.
type RecordSource interface {
	Get(ctx context.Context, executionID string) (*track.ExecutionStatus, error)
}

// Notifier renders transitions and validation results into chat messages
// and fans them out to the configured sinks. Any sink may be nil;
// unconfigured channels are skipped silently.
type Notifier struct {
	discord Sink
	slack   Sink
	kafka   *KafkaSink
	records RecordSource
	logger  logger.Logger
}

// Ensure Notifier implements the tracker's notification hook.
var _ track.TransitionNotifier = (*Notifier)(nil)

// NewNotifier creates a notifier over the given channels. records may be
// nil, in which case the FAILED template omits the log reference.
func NewNotifier(discord, slack Sink, kafka *KafkaSink, records RecordSource, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		discord: discord,
		slack:   slack,
		kafka:   kafka,
		records: records,
		logger:  log,
	}
}

// StageTransition renders and delivers the message for one accepted
// transition. Unmapped (stage, status) pairs produce no message.
func (n *Notifier) StageTransition(ctx context.Context, ev track.Event, aiSolution string) {
	if n.kafka != nil {
		if err := n.kafka.PublishTransition(ctx, ev, aiSolution); err != nil {
			n.logger.Warn(ctx, "Kafka publish failed", map[string]interface{}{
				"execution_id": ev.ExecutionID,
				"error":        err.Error(),
			})
		}
	}

	message := n.renderTransition(ctx, ev, aiSolution)
	if message == "" {
		return
	}
	n.broadcast(ctx, message)
}

// ValidationOutcome carries the post-deploy validation verdict into the
// rendered message.
type ValidationOutcome struct {
	Success  bool
	Reason   string
	CheckURL string
	LogURL   string
}

// ValidationResult delivers the post-deploy validation verdict.
func (n *Notifier) ValidationResult(ctx context.Context, executionID, envName string, res ValidationOutcome) {
	var message string
	if res.Success {
		message = fmt.Sprintf(
			"✅ **[Deploy Success]** 배포 검증 완료!\n**환경:** `%s`\n**Pipeline ID:** `%s`\n서비스가 정상적으로 동작 중입니다. 🎉",
			envName, executionID)
	} else {
		message = fmt.Sprintf(
			"⚠️ **[Deploy Failed]** 배포 검증 실패!\n**환경:** `%s`\n**Pipeline ID:** `%s`\n**사유:** %s\n**확인 URL:** %s\n**로그:** %s",
			envName, executionID, res.Reason, res.CheckURL, res.LogURL)
	}
	n.broadcast(ctx, message)
}

// ConfigError reports a misconfiguration that prevented validation from
// running at all.
func (n *Notifier) ConfigError(ctx context.Context, detail string) {
	n.broadcast(ctx, "⚠️ **[Config Error]** "+detail)
}

// renderTransition maps (stage, status) to its fixed template. The short
// execution id keeps messages scannable.
func (n *Notifier) renderTransition(ctx context.Context, ev track.Event, aiSolution string) string {
	short := shortID(ev.ExecutionID)

	if ev.Status.IsFailure() {
		message := fmt.Sprintf("🐛 앗! **[%s]** 단계에서 배포 실패!\n> **이유:** %s", ev.Stage, ev.ErrorSummary)
		if aiSolution != "" {
			message += fmt.Sprintf("\n**AI 분석:**\n> %s", aiSolution)
		}
		if logURL := n.storedLogURL(ctx, ev.ExecutionID); logURL != "" {
			message += fmt.Sprintf("\n> **로그 확인:** %s", logURL)
		}
		return message
	}

	switch {
	case ev.Stage == track.StageSource && ev.Status == track.StatusStarted:
		return fmt.Sprintf("🚀 [Deploy Land] '%s' 배포가 시작되었습니다!", short)
	case ev.Stage == track.StageBuild && ev.Status == track.StatusStarted:
		return fmt.Sprintf("🔨 [Deploy Land] '%s' 빌드 시작! Build 중입니다...", short)
	case ev.Stage == track.StageBuild && ev.Status == track.StatusSucceeded:
		return fmt.Sprintf("✅ [Deploy Land] '%s' 빌드 성공! Deploy 단계로 이동합니다...", short)
	case ev.Stage == track.StageDeploy && ev.Status == track.StatusStarted:
		return fmt.Sprintf("🚚 [Deploy Land] '%s' 배포 시작! Deploy 중입니다...", short)
	case ev.Stage == track.StageDeploy && ev.Status == track.StatusSucceeded:
		return fmt.Sprintf("🎉 [Deploy Land] '%s' 배포 성공!", short)
	default:
		return ""
	}
}

// storedLogURL reads the log URL back from the persisted record.
func (n *Notifier) storedLogURL(ctx context.Context, executionID string) string {
	if n.records == nil {
		return ""
	}
	rec, err := n.records.Get(ctx, executionID)
	if err != nil {
		n.logger.Debug(ctx, "No stored record for log URL", map[string]interface{}{
			"execution_id": executionID,
			"error":        err.Error(),
		})
		return ""
	}
	return rec.LogURL
}

// broadcast delivers the message to every configured channel. Slack's sink
// rewrites bold markers on its own.
func (n *Notifier) broadcast(ctx context.Context, message string) {
	for name, sink := range map[string]Sink{"discord": n.discord, "slack": n.slack} {
		if sink == nil {
			continue
		}
		if err := sink.Send(ctx, message); err != nil {
			n.logger.Warn(ctx, "Notification delivery failed", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}
}

// shortID truncates an execution id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

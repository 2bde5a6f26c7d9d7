package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MyCarrier-DevOps/deploytrack/track"
)

// recordingSink captures sent messages.
type recordingSink struct {
	messages []string
	err      error
}

func (r *recordingSink) Send(ctx context.Context, message string) error {
	r.messages = append(r.messages, message)
	return r.err
}

// fakeRecords serves one stored record.
type fakeRecords struct {
	rec *track.ExecutionStatus
	err error
}

func (f *fakeRecords) Get(ctx context.Context, executionID string) (*track.ExecutionStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func transition(stage track.Stage, status track.Status) track.Event {
	return track.Event{
		ExecutionID: "abcdef1234567890",
		Stage:       stage,
		Status:      status,
	}
}

func TestStageTransitionHappyPathTemplates(t *testing.T) {
	cases := []struct {
		stage  track.Stage
		status track.Status
		want   string
	}{
		{track.StageSource, track.StatusStarted, "🚀 [Deploy Land] 'abcdef12' 배포가 시작되었습니다!"},
		{track.StageBuild, track.StatusStarted, "🔨 [Deploy Land] 'abcdef12' 빌드 시작! Build 중입니다..."},
		{track.StageBuild, track.StatusSucceeded, "✅ [Deploy Land] 'abcdef12' 빌드 성공! Deploy 단계로 이동합니다..."},
		{track.StageDeploy, track.StatusStarted, "🚚 [Deploy Land] 'abcdef12' 배포 시작! Deploy 중입니다..."},
		{track.StageDeploy, track.StatusSucceeded, "🎉 [Deploy Land] 'abcdef12' 배포 성공!"},
	}
	for _, tc := range cases {
		discord := &recordingSink{}
		n := NewNotifier(discord, nil, nil, nil, nil)
		n.StageTransition(context.Background(), transition(tc.stage, tc.status), "")
		if len(discord.messages) != 1 || discord.messages[0] != tc.want {
			t.Errorf("%s/%s: messages = %q, want %q", tc.stage, tc.status, discord.messages, tc.want)
		}
	}
}

func TestStageTransitionUnmappedPairSilent(t *testing.T) {
	discord := &recordingSink{}
	n := NewNotifier(discord, nil, nil, nil, nil)

	n.StageTransition(context.Background(), transition(track.StageSource, track.StatusSucceeded), "")
	n.StageTransition(context.Background(), transition(track.StageBuild, track.StatusInProgress), "")

	if len(discord.messages) != 0 {
		t.Errorf("unmapped transitions must not notify: %q", discord.messages)
	}
}

func TestStageTransitionFailureMessage(t *testing.T) {
	discord := &recordingSink{}
	records := &fakeRecords{rec: &track.ExecutionStatus{
		ExecutionID: "abcdef1234567890",
		LogURL:      "https://console/logs/stream",
	}}
	n := NewNotifier(discord, nil, nil, records, nil)

	ev := transition(track.StageBuild, track.StatusFailed)
	ev.ErrorSummary = "compile error"
	n.StageTransition(context.Background(), ev, "의존성 버전을 확인하세요.")

	if len(discord.messages) != 1 {
		t.Fatalf("messages = %q", discord.messages)
	}
	msg := discord.messages[0]
	for _, want := range []string{
		"**[Build]** 단계에서 배포 실패!",
		"**이유:** compile error",
		"**AI 분석:**",
		"의존성 버전을 확인하세요.",
		"**로그 확인:** https://console/logs/stream",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestStageTransitionFailureWithoutExtras(t *testing.T) {
	discord := &recordingSink{}
	n := NewNotifier(discord, nil, nil, &fakeRecords{err: errors.New("unavailable")}, nil)

	ev := transition(track.StageDeploy, track.StatusFailed)
	ev.ErrorSummary = "rollback triggered"
	n.StageTransition(context.Background(), ev, "")

	msg := discord.messages[0]
	if strings.Contains(msg, "AI 분석") {
		t.Errorf("message %q must omit diagnostic section", msg)
	}
	if strings.Contains(msg, "로그 확인") {
		t.Errorf("message %q must omit log section when lookup fails", msg)
	}
}

func TestStageTransitionBothChannels(t *testing.T) {
	discord := &recordingSink{}
	slack := &recordingSink{}
	n := NewNotifier(discord, slack, nil, nil, nil)

	n.StageTransition(context.Background(), transition(track.StageSource, track.StatusStarted), "")

	if len(discord.messages) != 1 || len(slack.messages) != 1 {
		t.Errorf("both channels must receive the message: discord=%d slack=%d",
			len(discord.messages), len(slack.messages))
	}
}

func TestStageTransitionDeliveryFailureSwallowed(t *testing.T) {
	discord := &recordingSink{err: errors.New("webhook 429")}
	slack := &recordingSink{}
	n := NewNotifier(discord, slack, nil, nil, nil)

	// Must not panic and must still deliver to the healthy channel.
	n.StageTransition(context.Background(), transition(track.StageSource, track.StatusStarted), "")
	if len(slack.messages) != 1 {
		t.Error("failure on one channel must not block the other")
	}
}

func TestValidationResultMessages(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		discord := &recordingSink{}
		n := NewNotifier(discord, nil, nil, nil, nil)
		n.ValidationResult(context.Background(), "exec-1", "my-env", ValidationOutcome{Success: true})
		msg := discord.messages[0]
		if !strings.Contains(msg, "[Deploy Success]") || !strings.Contains(msg, "`my-env`") {
			t.Errorf("message = %q", msg)
		}
	})

	t.Run("failure", func(t *testing.T) {
		discord := &recordingSink{}
		n := NewNotifier(discord, nil, nil, nil, nil)
		n.ValidationResult(context.Background(), "exec-1", "my-env", ValidationOutcome{
			Reason:   "HTTP 503 from http://my-env/",
			CheckURL: "http://my-env/",
			LogURL:   "https://console/logs",
		})
		msg := discord.messages[0]
		for _, want := range []string{"[Deploy Failed]", "HTTP 503", "http://my-env/", "https://console/logs"} {
			if !strings.Contains(msg, want) {
				t.Errorf("message %q missing %q", msg, want)
			}
		}
	})
}

func TestDiscordWebhookPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewDiscordWebhook(srv.URL)
	if err := sink.Send(context.Background(), "**bold** message"); err != nil {
		t.Fatal(err)
	}
	if got["content"] != "**bold** message" {
		t.Errorf("payload = %v", got)
	}
}

func TestSlackWebhookRewritesBold(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSlackWebhook(srv.URL)
	if err := sink.Send(context.Background(), "**[Build]** failed"); err != nil {
		t.Fatal(err)
	}
	if got["text"] != "*[Build]* failed" {
		t.Errorf("payload = %v", got)
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if err := NewDiscordWebhook(srv.URL).Send(context.Background(), "hi"); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
)

// Default validation timings. Stabilization covers the window between the
// orchestrator reporting success and the platform actually swapping
// traffic; the probe timeout bounds a single HTTP round trip.
const (
	DefaultStabilization = 30 * time.Second
	DefaultProbeTimeout  = 10 * time.Second
)

// Result is the outcome of one validation run. Reason carries the last
// observed failure when Success is false.
type Result struct {
	Success  bool   `json:"success"`
	Reason   string `json:"reason,omitempty"`
	CheckURL string `json:"checkUrl"`
}

// Validator polls environment health and probes the service URL until the
// probe succeeds or the deadline passes.
type Validator struct {
	env           EnvironmentAPI
	probe         *http.Client
	maxWait       time.Duration
	interval      time.Duration
	stabilization time.Duration
	logger        logger.Logger

	// sleep blocks between iterations; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewValidator creates a validator over the given environment. The
// environment may be nil, in which case health telemetry is skipped and
// only the HTTP probe decides.
func NewValidator(env EnvironmentAPI, maxWait, interval time.Duration, log logger.Logger) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{
		env:           env,
		probe:         &http.Client{Timeout: DefaultProbeTimeout},
		maxWait:       maxWait,
		interval:      interval,
		stabilization: DefaultStabilization,
		logger:        log,
		sleep:         sleepCtx,
	}
}

// ResolveCheckURL derives the probe URL from the environment's CNAME and
// configured health check path. Callers with an explicit URL configured
// should skip this and pass it to Validate directly.
func (v *Validator) ResolveCheckURL(ctx context.Context) (string, error) {
	if v.env == nil {
		return "", fmt.Errorf("no environment configured for URL resolution")
	}

	info, err := v.env.Describe(ctx)
	if err != nil {
		return "", err
	}
	if info.CNAME == "" {
		return "", fmt.Errorf("environment %q has no CNAME", info.Name)
	}

	base := info.CNAME
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	path, err := v.env.HealthCheckPath(ctx, info)
	if err != nil {
		v.logger.Warn(ctx, "Health check path lookup failed, using /", map[string]interface{}{
			"environment": info.Name,
			"error":       err.Error(),
		})
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return strings.TrimRight(base, "/") + path, nil
}

// Validate waits out the stabilization window, then loops until checkURL
// answers 200 or maxWait elapses. Each iteration consults environment
// health first; a green environment (or unavailable telemetry, which is
// assumed healthy) is probed over HTTP. Only a 200 response ends the run
// successfully.
func (v *Validator) Validate(ctx context.Context, checkURL string) Result {
	res := Result{CheckURL: checkURL}

	v.logger.Info(ctx, "Waiting for deployment to stabilize", map[string]interface{}{
		"stabilization": v.stabilization.String(),
		"check_url":     checkURL,
	})
	if err := v.sleep(ctx, v.stabilization); err != nil {
		res.Reason = "validation cancelled: " + err.Error()
		return res
	}

	start := time.Now()
	for time.Since(start) < v.maxWait {
		if healthy, reason := v.environmentHealthy(ctx); !healthy {
			res.Reason = reason
		} else if ok, reason := v.probeOnce(ctx, checkURL); ok {
			res.Success = true
			res.Reason = ""
			v.logger.Info(ctx, "Deployment validated", map[string]interface{}{
				"check_url": checkURL,
				"elapsed":   time.Since(start).String(),
			})
			return res
		} else {
			res.Reason = reason
		}

		v.logger.Debug(ctx, "Validation attempt failed, retrying", map[string]interface{}{
			"reason":   res.Reason,
			"interval": v.interval.String(),
		})
		if err := v.sleep(ctx, v.interval); err != nil {
			res.Reason = "validation cancelled: " + err.Error()
			return res
		}
	}

	if res.Reason == "" {
		res.Reason = fmt.Sprintf("validation timed out after %s before any probe completed", v.maxWait)
	}
	v.logger.Warn(ctx, "Deployment validation failed", map[string]interface{}{
		"check_url": checkURL,
		"reason":    res.Reason,
	})
	return res
}

// environmentHealthy consults the platform telemetry. Unavailable
// telemetry is assumed healthy so the HTTP probe alone decides.
func (v *Validator) environmentHealthy(ctx context.Context) (bool, string) {
	if v.env == nil {
		return true, ""
	}
	health, err := v.env.Health(ctx)
	if err != nil || health == nil {
		v.logger.Warn(ctx, "Health telemetry unavailable, assuming healthy", map[string]interface{}{
			"error": errString(err),
		})
		return true, ""
	}
	if !strings.EqualFold(health.Color, "green") {
		return false, fmt.Sprintf("environment not healthy: color=%s status=%s", health.Color, health.Status)
	}
	return true, ""
}

// probeOnce issues a single GET against the check URL.
func (v *Validator) probeOnce(ctx context.Context, checkURL string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return false, "building probe request: " + err.Error()
	}
	resp, err := v.probe.Do(req)
	if err != nil {
		return false, "HTTP request failed: " + err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("HTTP %d from %s", resp.StatusCode, checkURL)
	}
	return true, ""
}

func errString(err error) string {
	if err == nil {
		return "nil health response"
	}
	return err.Error()
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

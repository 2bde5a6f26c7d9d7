package track

import (
	"net/url"
)

// DefaultConsoleBase is the CloudWatch console prefix log URLs are built
// under when no other base is configured.
const DefaultConsoleBase = "https://ap-northeast-2.console.aws.amazon.com/cloudwatch/home?region=ap-northeast-2#logs:log-group"

// LogURLBuilder maps (stage, build id) pairs to log viewer URLs.
// Source and unrecognized stages have no logs and always yield "".
type LogURLBuilder struct {
	// ConsoleBase is the log viewer URL prefix
	ConsoleBase string

	// BuildLogGroup is the log group for the Build stage
	BuildLogGroup string

	// DeployLogGroup is the log group for the Deploy stage
	DeployLogGroup string
}

// Build constructs the log viewer URL for a stage's logs, or "" when the
// stage has no build-keyed logs or the build id is empty. The log group and
// build id are percent-encoded as successive path segments.
func (b LogURLBuilder) Build(stage Stage, buildID string) string {
	if !stage.HasBuildLogs() || buildID == "" {
		return ""
	}

	var logGroup string
	switch stage {
	case StageBuild:
		logGroup = b.BuildLogGroup
	case StageDeploy:
		logGroup = b.DeployLogGroup
	}
	if logGroup == "" {
		return ""
	}

	base := b.ConsoleBase
	if base == "" {
		base = DefaultConsoleBase
	}
	return base + "/" + url.QueryEscape(logGroup) + "/log-stream/" + url.QueryEscape(buildID)
}

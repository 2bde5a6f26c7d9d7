package track

import (
	"strings"
	"testing"
)

func TestLogURLBuilder(t *testing.T) {
	b := LogURLBuilder{
		BuildLogGroup:  "/aws/codebuild/deploy-land",
		DeployLogGroup: "/aws/codebuild/deploy-land-deploy",
	}

	t.Run("source has no logs", func(t *testing.T) {
		if got := b.Build(StageSource, "build-42"); got != "" {
			t.Errorf("Build(Source) = %q, want empty", got)
		}
	})

	t.Run("empty build id", func(t *testing.T) {
		if got := b.Build(StageBuild, ""); got != "" {
			t.Errorf("Build(Build, \"\") = %q, want empty", got)
		}
	})

	t.Run("build stage encodes group and id", func(t *testing.T) {
		got := b.Build(StageBuild, "proj:build-42")
		if got == "" {
			t.Fatal("expected non-empty URL")
		}
		if !strings.HasPrefix(got, DefaultConsoleBase+"/") {
			t.Errorf("URL %q missing console base", got)
		}
		if !strings.Contains(got, "%2Faws%2Fcodebuild%2Fdeploy-land") {
			t.Errorf("URL %q missing encoded log group", got)
		}
		if !strings.Contains(got, "proj%3Abuild-42") {
			t.Errorf("URL %q missing encoded build id", got)
		}
	})

	t.Run("deploy stage uses deploy group", func(t *testing.T) {
		got := b.Build(StageDeploy, "build-9")
		if !strings.Contains(got, "deploy-land-deploy") {
			t.Errorf("URL %q missing deploy log group", got)
		}
	})

	t.Run("missing group yields empty", func(t *testing.T) {
		empty := LogURLBuilder{}
		if got := empty.Build(StageBuild, "build-1"); got != "" {
			t.Errorf("Build with no group = %q, want empty", got)
		}
	})
}

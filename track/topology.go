package track

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
)

// CodePipelineAPI is the subset of the CodePipeline client the topology
// lookup uses.
type CodePipelineAPI interface {
	GetPipeline(ctx context.Context, params *codepipeline.GetPipelineInput, optFns ...func(*codepipeline.Options)) (*codepipeline.GetPipelineOutput, error)
}

// CodePipelineTopology resolves a pipeline's declared stage topology from
// the orchestrator.
type CodePipelineTopology struct {
	client CodePipelineAPI
}

// Ensure CodePipelineTopology implements TopologyAPI.
var _ TopologyAPI = (*CodePipelineTopology)(nil)

// NewCodePipelineTopology creates a topology lookup over the given client.
func NewCodePipelineTopology(client CodePipelineAPI) *CodePipelineTopology {
	return &CodePipelineTopology{client: client}
}

// StageNames returns the ordered stage names of the named pipeline.
func (t *CodePipelineTopology) StageNames(ctx context.Context, pipelineName string) ([]string, error) {
	out, err := t.client.GetPipeline(ctx, &codepipeline.GetPipelineInput{
		Name: aws.String(pipelineName),
	})
	if err != nil {
		return nil, fmt.Errorf("get pipeline %q: %w", pipelineName, err)
	}
	if out.Pipeline == nil {
		return nil, fmt.Errorf("get pipeline %q: empty declaration", pipelineName)
	}

	names := make([]string, 0, len(out.Pipeline.Stages))
	for _, stage := range out.Pipeline.Stages {
		names = append(names, aws.ToString(stage.Name))
	}
	return names, nil
}

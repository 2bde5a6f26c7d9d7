// Package healthcheck validates a deployed environment after the pipeline
// reports a successful deploy: it polls the hosting platform's health
// telemetry and probes the service over HTTP until it responds or a
// deadline passes.
package healthcheck

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk/types"

	"github.com/MyCarrier-DevOps/deploytrack/logger"
)

// healthCheckPathNamespace and healthCheckPathOption locate the configured
// health check path in the environment's option settings.
const (
	healthCheckPathNamespace = "aws:elasticbeanstalk:environment:process:default"
	healthCheckPathOption    = "HealthCheckPath"
)

// EnvironmentInfo describes the target environment.
type EnvironmentInfo struct {
	Name        string
	Application string
	CNAME       string
}

// EnvHealth is the coarse health telemetry of an environment.
type EnvHealth struct {
	Color  string
	Status string
}

// EnvironmentAPI is the hosting platform surface the validator needs.
// Implementations return errors freely; the validator folds them into
// per-iteration reasons and never fails on telemetry alone.
type EnvironmentAPI interface {
	// Describe resolves the target environment's name, application, and
	// public CNAME.
	Describe(ctx context.Context) (*EnvironmentInfo, error)

	// HealthCheckPath returns the environment's configured health check
	// path.
	HealthCheckPath(ctx context.Context, info *EnvironmentInfo) (string, error)

	// Health returns the environment's current color and status.
	Health(ctx context.Context) (*EnvHealth, error)
}

// BeanstalkAPI is the subset of the Elastic Beanstalk client used here.
type BeanstalkAPI interface {
	DescribeEnvironments(ctx context.Context, params *elasticbeanstalk.DescribeEnvironmentsInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeEnvironmentsOutput, error)
	DescribeConfigurationSettings(ctx context.Context, params *elasticbeanstalk.DescribeConfigurationSettingsInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeConfigurationSettingsOutput, error)
	DescribeEnvironmentHealth(ctx context.Context, params *elasticbeanstalk.DescribeEnvironmentHealthInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeEnvironmentHealthOutput, error)
}

// BeanstalkEnvironment implements EnvironmentAPI against Elastic
// Beanstalk. The environment id takes precedence over the name when both
// are configured.
type BeanstalkEnvironment struct {
	client  BeanstalkAPI
	envID   string
	envName string
	logger  logger.Logger
}

// Ensure BeanstalkEnvironment implements EnvironmentAPI.
var _ EnvironmentAPI = (*BeanstalkEnvironment)(nil)

// NewBeanstalkEnvironment creates an environment lookup for the given
// identifier pair. At least one of envID and envName must be non-empty.
func NewBeanstalkEnvironment(client BeanstalkAPI, envID, envName string, log logger.Logger) *BeanstalkEnvironment {
	if log == nil {
		log = logger.Nop()
	}
	return &BeanstalkEnvironment{
		client:  client,
		envID:   envID,
		envName: envName,
		logger:  log,
	}
}

// DisplayName returns the identifier used in human-readable messages,
// preferring the name.
func (b *BeanstalkEnvironment) DisplayName() string {
	if b.envName != "" {
		return b.envName
	}
	return b.envID
}

// Describe resolves the environment by id (preferred) or name.
func (b *BeanstalkEnvironment) Describe(ctx context.Context) (*EnvironmentInfo, error) {
	input := &elasticbeanstalk.DescribeEnvironmentsInput{}
	switch {
	case b.envID != "":
		input.EnvironmentIds = []string{b.envID}
	case b.envName != "":
		input.EnvironmentNames = []string{b.envName}
	default:
		return nil, fmt.Errorf("no environment id or name configured")
	}

	out, err := b.client.DescribeEnvironments(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("describe environments: %w", err)
	}
	if len(out.Environments) == 0 {
		return nil, fmt.Errorf("no environment found for %q", b.DisplayName())
	}

	env := out.Environments[0]
	info := &EnvironmentInfo{
		Name:        aws.ToString(env.EnvironmentName),
		Application: aws.ToString(env.ApplicationName),
		CNAME:       aws.ToString(env.CNAME),
	}
	b.logger.Info(ctx, "Resolved environment", map[string]interface{}{
		"environment": info.Name,
		"cname":       info.CNAME,
	})
	return info, nil
}

// HealthCheckPath reads the configured health check path from the
// environment's option settings, defaulting to "/" when absent.
func (b *BeanstalkEnvironment) HealthCheckPath(ctx context.Context, info *EnvironmentInfo) (string, error) {
	out, err := b.client.DescribeConfigurationSettings(ctx, &elasticbeanstalk.DescribeConfigurationSettingsInput{
		ApplicationName: aws.String(info.Application),
		EnvironmentName: aws.String(info.Name),
	})
	if err != nil {
		return "", fmt.Errorf("describe configuration settings: %w", err)
	}

	for _, settings := range out.ConfigurationSettings {
		for _, opt := range settings.OptionSettings {
			if aws.ToString(opt.Namespace) == healthCheckPathNamespace &&
				aws.ToString(opt.OptionName) == healthCheckPathOption {
				if path := aws.ToString(opt.Value); path != "" {
					return path, nil
				}
			}
		}
	}
	return "/", nil
}

// Health returns the environment's color and health status.
func (b *BeanstalkEnvironment) Health(ctx context.Context) (*EnvHealth, error) {
	envName := b.envName
	if envName == "" || b.envID != "" {
		info, err := b.Describe(ctx)
		if err != nil {
			return nil, err
		}
		envName = info.Name
	}

	out, err := b.client.DescribeEnvironmentHealth(ctx, &elasticbeanstalk.DescribeEnvironmentHealthInput{
		EnvironmentName: aws.String(envName),
		AttributeNames: []types.EnvironmentHealthAttribute{
			types.EnvironmentHealthAttributeColor,
			types.EnvironmentHealthAttributeHealthStatus,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describe environment health: %w", err)
	}

	return &EnvHealth{
		Color:  aws.ToString(out.Color),
		Status: aws.ToString(out.HealthStatus),
	}, nil
}

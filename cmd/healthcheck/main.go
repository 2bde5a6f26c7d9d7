// Command healthcheck validates deployments after the fact: it consumes
// status-table change records, waits for the target environment to
// stabilize, and probes it over HTTP until it answers or the deadline
// passes.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"

	"github.com/MyCarrier-DevOps/deploytrack/config"
	"github.com/MyCarrier-DevOps/deploytrack/handler"
	"github.com/MyCarrier-DevOps/deploytrack/healthcheck"
	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/notify"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.NewAppLogger("deploytrack-healthcheck")
	defer func() { _ = appLog.Sync() }()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		appLog.Error(ctx, "Load AWS config failed", err, nil)
		os.Exit(1)
	}

	var env healthcheck.EnvironmentAPI
	envName := ""
	if cfg.HasBeanstalkTarget() {
		beanstalk := healthcheck.NewBeanstalkEnvironment(
			elasticbeanstalk.NewFromConfig(awsCfg),
			cfg.Beanstalk.EnvironmentID,
			cfg.Beanstalk.EnvironmentName,
			appLog,
		)
		env = beanstalk
		envName = beanstalk.DisplayName()
	}

	validator := healthcheck.NewValidator(env, cfg.MaxWait(), cfg.PollInterval(), appLog)

	var discord, slack notify.Sink
	if cfg.Webhook.DiscordURL != "" {
		discord = notify.NewDiscordWebhook(cfg.Webhook.DiscordURL)
	}
	if cfg.Webhook.SlackURL != "" {
		slack = notify.NewSlackWebhook(cfg.Webhook.SlackURL)
	}
	notifier := notify.NewNotifier(discord, slack, nil, nil, appLog)

	lambda.Start(handler.NewHealth(validator, notifier, envName, cfg.CheckURL, appLog).Handle)
}

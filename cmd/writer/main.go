// Command writer is the lifecycle-event entrypoint: it receives
// orchestrator state-change notifications, runs them through the status
// tracker, and serves as the write path of the status table.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/MyCarrier-DevOps/deploytrack/advisor"
	"github.com/MyCarrier-DevOps/deploytrack/config"
	"github.com/MyCarrier-DevOps/deploytrack/handler"
	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/notify"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.NewAppLogger("deploytrack-writer")
	defer func() { _ = appLog.Sync() }()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		appLog.Error(ctx, "Load AWS config failed", err, nil)
		os.Exit(1)
	}

	// Bedrock may live in a different region than the status table.
	bedrockCfg := awsCfg.Copy()
	bedrockCfg.Region = cfg.BedrockRegion

	store := track.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.TableName, appLog)
	topology := track.NewCodePipelineTopology(codepipeline.NewFromConfig(awsCfg))
	diag := advisor.NewBedrockAdvisor(bedrockruntime.NewFromConfig(bedrockCfg), cfg.BedrockModelID, appLog)

	var discord, slack notify.Sink
	if cfg.Webhook.DiscordURL != "" {
		discord = notify.NewDiscordWebhook(cfg.Webhook.DiscordURL)
	}
	if cfg.Webhook.SlackURL != "" {
		slack = notify.NewSlackWebhook(cfg.Webhook.SlackURL)
	}
	var kafkaSink *notify.KafkaSink
	if cfg.Kafka.Address != "" {
		kafkaSink = notify.NewKafkaSink(notify.NewKafkaWriter(cfg.Kafka.Address, cfg.Kafka.Topic))
		defer func() { _ = kafkaSink.Close() }()
	}
	notifier := notify.NewNotifier(discord, slack, kafkaSink, store, appLog)

	tracker := track.NewTracker(store, topology, diag, notifier, track.LogURLBuilder{
		BuildLogGroup:  cfg.BuildLogGroup,
		DeployLogGroup: cfg.DeployLogGroup,
	}, appLog)

	lambda.Start(handler.NewWriter(tracker, appLog).Handle)
}

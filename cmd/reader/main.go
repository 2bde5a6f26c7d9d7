// Command reader serves status lookups by execution id behind the API
// gateway.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/MyCarrier-DevOps/deploytrack/config"
	"github.com/MyCarrier-DevOps/deploytrack/handler"
	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.NewAppLogger("deploytrack-reader")
	defer func() { _ = appLog.Sync() }()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		appLog.Error(ctx, "Load AWS config failed", err, nil)
		os.Exit(1)
	}

	store := track.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.TableName, appLog)
	lambda.Start(handler.NewReader(store, appLog).Handle)
}

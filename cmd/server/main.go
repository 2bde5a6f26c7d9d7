// Command server exposes the status table and environment URL lookup over
// plain HTTP for local development and non-lambda deployments.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
	"github.com/gin-gonic/gin"

	"github.com/MyCarrier-DevOps/deploytrack/config"
	"github.com/MyCarrier-DevOps/deploytrack/healthcheck"
	"github.com/MyCarrier-DevOps/deploytrack/logger"
	"github.com/MyCarrier-DevOps/deploytrack/track"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.NewAppLogger("deploytrack-server")
	defer func() { _ = appLog.Sync() }()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		appLog.Error(ctx, "Load AWS config failed", err, nil)
		os.Exit(1)
	}

	store := track.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.TableName, appLog)

	var env healthcheck.EnvironmentAPI
	if cfg.HasBeanstalkTarget() {
		env = healthcheck.NewBeanstalkEnvironment(
			elasticbeanstalk.NewFromConfig(awsCfg),
			cfg.Beanstalk.EnvironmentID,
			cfg.Beanstalk.EnvironmentName,
			appLog,
		)
	}
	validator := healthcheck.NewValidator(env, cfg.MaxWait(), cfg.PollInterval(), appLog)

	if cfg.Loglevel != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/pipelines/:pipelineId", func(c *gin.Context) {
		rec, err := store.Get(c.Request.Context(), c.Param("pipelineId"))
		if err != nil {
			if errors.Is(err, track.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Item not found for pipelineId: " + c.Param("pipelineId")})
				return
			}
			appLog.Error(c.Request.Context(), "Status lookup failed", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	router.GET("/beanstalk-url", func(c *gin.Context) {
		checkURL := cfg.CheckURL
		if checkURL == "" {
			resolved, err := validator.ResolveCheckURL(c.Request.Context())
			if err != nil {
				appLog.Error(c.Request.Context(), "Environment URL lookup failed", err, nil)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve Beanstalk environment URL."})
				return
			}
			checkURL = resolved
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Beanstalk environment URL retrieved.",
			"beanstalkUrl": checkURL,
		})
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	appLog.Info(ctx, "Starting HTTP server", map[string]interface{}{"addr": addr})
	if err := router.Run(addr); err != nil {
		appLog.Error(ctx, "HTTP server exited", err, nil)
		os.Exit(1)
	}
}

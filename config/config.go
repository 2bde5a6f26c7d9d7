// Package config loads the deploytrack runtime configuration from
// environment variables using Viper. One Config is built at process start
// and handed to each component; components never read the environment
// themselves.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultTableName     = "deploy-land-status"
	DefaultBedrockModel  = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	DefaultBedrockRegion = "ap-northeast-2"
	DefaultMaxWait       = 60 * time.Second
	DefaultPollInterval  = 30 * time.Second
)

// WebhookConfig holds the outbound chat notification endpoints.
// Either URL may be empty; an empty URL silently disables that channel.
type WebhookConfig struct {
	DiscordURL string `mapstructure:"discordurl"`
	SlackURL   string `mapstructure:"slackurl"`
}

// BeanstalkConfig identifies the environment validated after a deploy.
// EnvironmentID takes precedence over EnvironmentName when both are set.
type BeanstalkConfig struct {
	EnvironmentID   string `mapstructure:"environmentid"`
	EnvironmentName string `mapstructure:"environmentname"`
}

// KafkaConfig holds the optional status-event sink. An empty Address
// disables the sink.
type KafkaConfig struct {
	Address string `mapstructure:"address"`
	Topic   string `mapstructure:"topic"`
}

// Config holds the application-wide configuration.
type Config struct {
	// TableName is the status store table
	TableName string `mapstructure:"tablename"`

	// Region is the AWS region for the store, pipeline, and Beanstalk clients
	Region string `mapstructure:"region"`

	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Beanstalk BeanstalkConfig `mapstructure:"beanstalk"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`

	// CheckURL is the explicit post-deploy probe URL. When empty the URL is
	// derived from the Beanstalk environment's CNAME and health check path.
	CheckURL string `mapstructure:"checkurl"`

	// MaxWaitSeconds bounds the health validation loop's total wall time
	MaxWaitSeconds int `mapstructure:"maxwaitseconds"`

	// IntervalSeconds is the sleep between validation iterations
	IntervalSeconds int `mapstructure:"intervalseconds"`

	// BedrockModelID is the generative model used for failure diagnostics
	BedrockModelID string `mapstructure:"bedrockmodelid"`

	// BedrockRegion is the region the Bedrock runtime client targets
	BedrockRegion string `mapstructure:"bedrockregion"`

	// BuildLogGroup and DeployLogGroup are the CodeBuild log groups the
	// log reference builder links to for the Build and Deploy stages
	BuildLogGroup  string `mapstructure:"buildloggroup"`
	DeployLogGroup string `mapstructure:"deployloggroup"`

	Loglevel string `mapstructure:"loglevel"`
}

// MaxWait returns the health validation deadline as a duration.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSeconds) * time.Second
}

// PollInterval returns the sleep between validation iterations as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// HasBeanstalkTarget reports whether either environment identifier is set.
func (c *Config) HasBeanstalkTarget() bool {
	return c.Beanstalk.EnvironmentID != "" || c.Beanstalk.EnvironmentName != ""
}

// LoadConfig loads the configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEPLOYTRACK") // e.g. DEPLOYTRACK_TABLENAME

	// Bind environment variables
	_ = v.BindEnv("tablename", "DEPLOYTRACK_TABLENAME")
	_ = v.BindEnv("region", "DEPLOYTRACK_REGION", "AWS_REGION")
	_ = v.BindEnv("webhook.discordurl", "DISCORD_WEBHOOK_URL")
	_ = v.BindEnv("webhook.slackurl", "SLACK_WEBHOOK_URL")
	_ = v.BindEnv("beanstalk.environmentid", "BEANSTALK_ENV_ID")
	_ = v.BindEnv("beanstalk.environmentname", "BEANSTALK_ENV_NAME")
	_ = v.BindEnv("kafka.address", "DEPLOYTRACK_KAFKA_ADDRESS")
	_ = v.BindEnv("kafka.topic", "DEPLOYTRACK_KAFKA_TOPIC")
	_ = v.BindEnv("checkurl", "CHECK_URL")
	_ = v.BindEnv("maxwaitseconds", "MAX_WAIT")
	_ = v.BindEnv("intervalseconds", "INTERVAL")
	_ = v.BindEnv("bedrockmodelid", "DEPLOYTRACK_BEDROCK_MODEL_ID")
	_ = v.BindEnv("bedrockregion", "DEPLOYTRACK_BEDROCK_REGION")
	_ = v.BindEnv("buildloggroup", "DEPLOYTRACK_BUILD_LOG_GROUP")
	_ = v.BindEnv("deployloggroup", "DEPLOYTRACK_DEPLOY_LOG_GROUP")
	_ = v.BindEnv("loglevel", "LOG_LEVEL")

	// Read environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %v", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the loaded configuration and fills defaults.
func validateConfig(config *Config) error {
	if config.TableName == "" {
		config.TableName = DefaultTableName
	}
	if config.Region == "" {
		return fmt.Errorf("region is required (set DEPLOYTRACK_REGION or AWS_REGION)")
	}
	if config.BedrockModelID == "" {
		config.BedrockModelID = DefaultBedrockModel
	}
	if config.BedrockRegion == "" {
		config.BedrockRegion = DefaultBedrockRegion
	}
	if config.MaxWaitSeconds < 0 || config.IntervalSeconds < 0 {
		return fmt.Errorf("MAX_WAIT and INTERVAL must not be negative")
	}
	if config.MaxWaitSeconds == 0 {
		config.MaxWaitSeconds = int(DefaultMaxWait / time.Second)
	}
	if config.IntervalSeconds == 0 {
		config.IntervalSeconds = int(DefaultPollInterval / time.Second)
	}
	if config.Kafka.Address != "" && config.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when a kafka address is set")
	}
	if config.Loglevel == "" {
		config.Loglevel = "info"
	}
	return nil
}

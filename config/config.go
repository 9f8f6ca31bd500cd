/*
Copyright 2025 Cartera Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5401"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"CARTERA_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"CARTERA_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"CARTERA_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"CARTERA_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"CARTERA_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"CARTERA_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"CARTERA_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"CARTERA_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"CARTERA_REDIS_SKIP_TLS_VERIFY"`
}

type QueueConfig struct {
	DispatchQueuePrefix string `json:"dispatch_queue_prefix" envconfig:"CARTERA_QUEUE_DISPATCH_PREFIX"`
	NumberOfQueues      int    `json:"number_of_queues" envconfig:"CARTERA_QUEUE_NUMBER_OF_QUEUES"`
	WebhookQueue        string `json:"webhook_queue" envconfig:"CARTERA_QUEUE_WEBHOOK"`
	MaxRetryAttempts    int    `json:"max_retry_attempts" envconfig:"CARTERA_QUEUE_MAX_RETRY_ATTEMPTS"`
	BatchSize           int    `json:"batch_size" envconfig:"CARTERA_QUEUE_BATCH_SIZE"`
	MonitoringPort      string `json:"monitoring_port" envconfig:"CARTERA_QUEUE_MONITORING_PORT"`
}

type DispatchConfig struct {
	LockTTLSeconds  int    `json:"lock_ttl_seconds" envconfig:"CARTERA_DISPATCH_LOCK_TTL_SECONDS"`
	DefaultTimezone string `json:"default_timezone" envconfig:"CARTERA_DISPATCH_DEFAULT_TIMEZONE"`
}

type ScheduleConfig struct {
	Region        string `json:"region" envconfig:"CARTERA_SCHEDULE_REGION"`
	GroupName     string `json:"group_name" envconfig:"CARTERA_SCHEDULE_GROUP_NAME"`
	TargetArn     string `json:"target_arn" envconfig:"CARTERA_SCHEDULE_TARGET_ARN"`
	RoleArn       string `json:"role_arn" envconfig:"CARTERA_SCHEDULE_ROLE_ARN"`
	AccessKeyId   string `json:"access_key_id" envconfig:"CARTERA_SCHEDULE_ACCESS_KEY_ID"`
	SecretKey     string `json:"secret_access_key" envconfig:"CARTERA_SCHEDULE_SECRET_ACCESS_KEY"`
	LocalEndpoint string `json:"local_endpoint" envconfig:"CARTERA_SCHEDULE_LOCAL_ENDPOINT"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"CARTERA_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"CARTERA_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"CARTERA_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type OtelConfig struct {
	Enabled bool `json:"enabled" envconfig:"CARTERA_OTEL_ENABLED"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"CARTERA_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Queue        QueueConfig      `json:"queue"`
	Dispatch     DispatchConfig   `json:"dispatch"`
	Schedule     ScheduleConfig   `json:"schedule"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Otel         OtelConfig       `json:"otel"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("cartera", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called cartera.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Cartera Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Queue.DispatchQueuePrefix == "" {
		cnf.Queue.DispatchQueuePrefix = "dispatch_queue"
	}
	if cnf.Queue.NumberOfQueues <= 0 {
		cnf.Queue.NumberOfQueues = 4
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "new_webhook_queue"
	}
	if cnf.Queue.MaxRetryAttempts <= 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}
	if cnf.Queue.BatchSize <= 0 {
		cnf.Queue.BatchSize = 50
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5403"
	}

	if cnf.Dispatch.LockTTLSeconds <= 0 {
		cnf.Dispatch.LockTTLSeconds = 300
	}
	if cnf.Dispatch.DefaultTimezone == "" {
		cnf.Dispatch.DefaultTimezone = "America/Bogota"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.Queue = QueueConfig{
		DispatchQueuePrefix: "dispatch_queue",
		NumberOfQueues:      4,
		WebhookQueue:        "new_webhook_queue",
		MaxRetryAttempts:    5,
		BatchSize:           50,
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Redis        RedisConfig        `yaml:"redis"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Carriers     CarriersConfig     `yaml:"carriers"`
	LogisticAPIs LogisticAPIsConfig `yaml:"logisticapis"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ReportUpdatedTopicName string `yaml:"report_updated_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TelegramConfig struct {
	Token   string  `yaml:"token"`
	ChatIDs []int64 `yaml:"chat_ids"`
}

type CarriersConfig struct {
	UseFake bool `yaml:"use_fake"`

	BaikalBaseURL string `yaml:"baikal_base_url"`
	BaikalAppKey  string `yaml:"baikal_app_key"`

	DellinBaseURL string `yaml:"dellin_base_url"`
	DellinAppKey  string `yaml:"dellin_app_key"`
	DellinSession string `yaml:"dellin_session"`

	PecomBaseURL string `yaml:"pecom_base_url"`
	PecomLogin   string `yaml:"pecom_login"`
	PecomAPIKey  string `yaml:"pecom_api_key"`
}

type LogisticAPIsConfig struct {
	APIHTTPAddr        string `yaml:"api_http_addr"`
	WorkerHTTPAddr     string `yaml:"worker_http_addr"`
	DashboardHTTPAddr  string `yaml:"dashboard_http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	SnapshotTTLSeconds int `yaml:"snapshot_ttl_seconds"`

	WorkerPollIntervalSeconds int `yaml:"worker_poll_interval_seconds"`
	WorkerRateLimitPerMinute  int `yaml:"worker_rate_limit_per_minute"`

	DashboardRefreshSeconds int    `yaml:"dashboard_refresh_seconds"`
	ReportAPIBaseURL        string `yaml:"report_api_base_url"`

	// Бизнес-настройки отчёта.
	OwnEntityNames []string `yaml:"own_entity_names"`
	HomeCityMark   string   `yaml:"home_city_mark"`

	// Пороги габаритов. Нули заменяются дефолтами в bootstrap.
	HeavyPerUnitKg  float64 `yaml:"heavy_per_unit_kg"`
	HeavyAbsoluteKg float64 `yaml:"heavy_absolute_kg"`
	OversizeM3      float64 `yaml:"oversize_m3"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

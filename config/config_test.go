package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  report_updated_topic_name: "report.updated"
redis:
  host: "localhost"
  port: 6379
telegram:
  token: "123:abc"
  chat_ids: [100, 200]
carriers:
  use_fake: true
  pecom_login: "user"
logisticapis:
  api_http_addr: ":8080"
  worker_http_addr: ":8081"
  dashboard_http_addr: ":8082"
  kafka_consumer_group: "report-api"
  snapshot_ttl_seconds: 600
  dashboard_refresh_seconds: 60
  report_api_base_url: "http://localhost:8080"
  own_entity_names: ["ЮЖНЫЙ ФОРПОСТ"]
  home_city_mark: "АСТРА"
  heavy_per_unit_kg: 35
  heavy_absolute_kg: 150
  oversize_m3: 1.5
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "report.updated", cfg.Kafka.ReportUpdatedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, []int64{100, 200}, cfg.Telegram.ChatIDs)
	require.True(t, cfg.Carriers.UseFake)
	require.Equal(t, ":8080", cfg.LogisticAPIs.APIHTTPAddr)
	require.Equal(t, []string{"ЮЖНЫЙ ФОРПОСТ"}, cfg.LogisticAPIs.OwnEntityNames)
	require.Equal(t, 1.5, cfg.LogisticAPIs.OversizeM3)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

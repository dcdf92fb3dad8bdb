package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/RobertKano/logisticapis/config"
	"github.com/RobertKano/logisticapis/internal/broker/kafka"
	"github.com/RobertKano/logisticapis/internal/cache/rediscache"
	"github.com/RobertKano/logisticapis/internal/integrations/carrier"
	"github.com/RobertKano/logisticapis/internal/integrations/carrier/baikalhttp"
	"github.com/RobertKano/logisticapis/internal/integrations/carrier/dellinhttp"
	"github.com/RobertKano/logisticapis/internal/integrations/carrier/fake"
	"github.com/RobertKano/logisticapis/internal/integrations/carrier/pecomhttp"
	"github.com/RobertKano/logisticapis/internal/notifier"
	"github.com/RobertKano/logisticapis/internal/services/collector"
	"github.com/RobertKano/logisticapis/internal/storage/pgreport"
)

type workerFactories struct {
	newStorage     func(cfg *config.Config) (repo collector.Repository, closeFn func(), err error)
	newProducer    func(cfg *config.Config) collector.Producer
	newRateLimiter func(cfg *config.Config) collector.RateLimiter
	newClients     func(cfg *config.Config) []carrier.Client
	newNotifier    func(cfg *config.Config) collector.Notifier
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (collector.Repository, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgreport.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) collector.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
		newRateLimiter: func(cfg *config.Config) collector.RateLimiter {
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			return rediscache.NewRateLimiter(redisAddr)
		},
		newClients: newCarrierClients,
		newNotifier: func(cfg *config.Config) collector.Notifier {
			if cfg.Telegram.Token == "" || len(cfg.Telegram.ChatIDs) == 0 {
				return nil
			}
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			n, err := notifier.New(
				cfg.Telegram.Token,
				cfg.Telegram.ChatIDs,
				cfg.LogisticAPIs.OwnEntityNames,
				cfg.LogisticAPIs.HomeCityMark,
				rediscache.New(redisAddr),
				slog.Default(),
			)
			if err != nil {
				slog.Warn("telegram notifier disabled", "error", err.Error())
				return nil
			}
			return n
		},
	}
}

// Без ключей кабинетов (или с use_fake) работаем на заглушках, чтобы
// весь конвейер можно было гонять локально.
func newCarrierClients(cfg *config.Config) []carrier.Client {
	c := cfg.Carriers
	if c.UseFake || (c.BaikalAppKey == "" && c.DellinAppKey == "" && c.PecomAPIKey == "") {
		return []carrier.Client{
			fake.New("baikal", "Байкал Сервис"),
			fake.New("dellin", "Деловые Линии"),
			fake.New("pecom", "ПЭК"),
		}
	}

	var clients []carrier.Client
	if c.BaikalAppKey != "" {
		clients = append(clients, baikalhttp.New(c.BaikalBaseURL, c.BaikalAppKey))
	}
	if c.DellinAppKey != "" {
		clients = append(clients, dellinhttp.New(c.DellinBaseURL, c.DellinAppKey, c.DellinSession))
	}
	if c.PecomAPIKey != "" {
		clients = append(clients, pecomhttp.New(c.PecomBaseURL, c.PecomLogin, c.PecomAPIKey))
	}
	return clients
}

func buildCollector(cfg *config.Config, f workerFactories) (*collector.Collector, func(), error) {
	topic := cfg.Kafka.ReportUpdatedTopicName
	if topic == "" {
		topic = "report.updated"
	}

	pollInterval := time.Duration(cfg.LogisticAPIs.WorkerPollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 10 * time.Minute
	}
	rlPerMin := int64(cfg.LogisticAPIs.WorkerRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 30
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	c := collector.New(repo, f.newClients(cfg), f.newProducer(cfg), f.newRateLimiter(cfg), topic).
		WithSettings(pollInterval, rlPerMin)
	if n := f.newNotifier(cfg); n != nil {
		c = c.WithNotifier(n)
	}
	return c, closeFn, nil
}

func RunReportWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	c, closeFn, err := buildCollector(cfg, f)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return c.Run(ctx)
}

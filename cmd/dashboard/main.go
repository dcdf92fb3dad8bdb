package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RobertKano/logisticapis/config"
	"github.com/RobertKano/logisticapis/internal/cache/rediscache"
	"github.com/RobertKano/logisticapis/internal/integrations/reportapi"
	"github.com/RobertKano/logisticapis/internal/report"
	"github.com/RobertKano/logisticapis/internal/services/dashboard"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.LogisticAPIs.DashboardHTTPAddr
	if httpAddr == "" {
		httpAddr = ":8082"
	}
	refresh := time.Duration(cfg.LogisticAPIs.DashboardRefreshSeconds) * time.Second
	if refresh <= 0 {
		refresh = 60 * time.Second
	}

	thresholds := report.DefaultSizeThresholds()
	if cfg.LogisticAPIs.HeavyPerUnitKg > 0 {
		thresholds.HeavyPerUnitKg = cfg.LogisticAPIs.HeavyPerUnitKg
	}
	if cfg.LogisticAPIs.HeavyAbsoluteKg > 0 {
		thresholds.HeavyAbsoluteKg = cfg.LogisticAPIs.HeavyAbsoluteKg
	}
	if cfg.LogisticAPIs.OversizeM3 > 0 {
		thresholds.OversizeM3 = cfg.LogisticAPIs.OversizeM3
	}

	ownEntity := ""
	if len(cfg.LogisticAPIs.OwnEntityNames) > 0 {
		ownEntity = strings.ToUpper(cfg.LogisticAPIs.OwnEntityNames[0])
	}

	api := reportapi.New(cfg.LogisticAPIs.ReportAPIBaseURL)
	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	durable := rediscache.New(redisAddr)
	norm := report.NewNormalizer(cfg.LogisticAPIs.OwnEntityNames, thresholds)

	ctrl := dashboard.New(api, api, durable, norm, ownEntity).
		WithRefreshInterval(refresh)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctrl.LoadSortDirection(ctx)

	if err := runDashboard(ctx, dashboardOpts{httpAddr: httpAddr}, ctrl); err != nil && err != context.Canceled {
		panic(err)
	}
}

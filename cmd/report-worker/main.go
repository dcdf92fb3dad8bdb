package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RobertKano/logisticapis/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	f := defaultWorkerFactories()

	c, closeFn, err := buildCollector(cfg, f)
	if err != nil {
		panic(err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Отладочный HTTP (stats/trigger/docs) поднимаем только если задан swaggerPath.
	if swaggerPath := os.Getenv("swaggerPath"); swaggerPath != "" {
		go func() {
			err := runWorkerHTTPServer(ctx, workerHTTPOpts{
				httpAddr:    cfg.LogisticAPIs.WorkerHTTPAddr,
				swaggerPath: swaggerPath,
				collector:   c,
				cfg:         cfg,
			})
			if err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stderr, "worker http server: %v\n", err)
			}
		}()
	}

	if err := c.Run(ctx); err != nil && err != context.Canceled {
		panic(err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/RobertKano/logisticapis/internal/broker/messages"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/RobertKano/logisticapis/internal/storage/pgreport"
)

type reportAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type reportService interface {
	Latest(ctx context.Context) (models.ReportSnapshot, error)
	ApplyUpdate(ctx context.Context, msg messages.ReportUpdated) error
	AddManual(ctx context.Context, rec models.ShipmentRecord) (models.ShipmentRecord, error)
	UpdateManual(ctx context.Context, rec models.ShipmentRecord) (models.ShipmentRecord, error)
	DeleteManual(ctx context.Context, id string) error
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func runReportAPI(ctx context.Context, opts reportAPIOpts, svc reportService, consumer kafkaConsumer) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := newRouter(svc, opts.swaggerPath)

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		_ = consumer.Consume(ctx, func(_key, value []byte) error {
			var m messages.ReportUpdated
			if err := json.Unmarshal(value, &m); err != nil {
				return err
			}
			return svc.ApplyUpdate(ctx, m)
		})
	}()

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}

func newRouter(svc reportService, swaggerPath string) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/api/latest", func(w http.ResponseWriter, req *http.Request) {
		snap, err := svc.Latest(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Post("/admin/add-manual", func(w http.ResponseWriter, req *http.Request) {
		var rec models.ShipmentRecord
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		out, err := svc.AddManual(req.Context(), rec)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/admin/update-manual", func(w http.ResponseWriter, req *http.Request) {
		var rec models.ShipmentRecord
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		out, err := svc.UpdateManual(req.Context(), rec)
		if err != nil {
			writeError(w, manualErrStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Delete("/admin/delete-manual/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if err := svc.DeleteManual(req.Context(), id); err != nil {
			writeError(w, manualErrStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	})

	r.Get("/swagger.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, req, swaggerPath)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/swagger.json")))

	return r
}

func manualErrStatus(err error) int {
	if errors.Is(err, pgreport.ErrManualNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

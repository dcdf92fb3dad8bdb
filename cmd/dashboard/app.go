package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RobertKano/logisticapis/internal/services/dashboard"
)

type dashboardOpts struct {
	httpAddr string
	onListen func(httpAddr string)
}

// runDashboard крутит фоновое обновление панели и отдаёт её состояние
// по HTTP. Контроллер и сервер живут до отмены контекста.
func runDashboard(ctx context.Context, opts dashboardOpts, ctrl *dashboard.Controller) error {
	if opts.httpAddr == "" {
		opts.httpAddr = ":8082"
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	go func() { _ = ctrl.Run(ctx) }()

	srv := &http.Server{Handler: newDashboardRouter(ctrl)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	return srv.Serve(lis)
}

func newDashboardRouter(ctrl *dashboard.Controller) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/view", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.View())
	})

	r.Post("/refresh", func(w http.ResponseWriter, _ *http.Request) {
		ctrl.Trigger()
		writeJSON(w, http.StatusOK, map[string]bool{"triggered": true})
	})

	r.Post("/view/{view}", func(w http.ResponseWriter, req *http.Request) {
		ctrl.SetView(chi.URLParam(req, "view"))
		writeJSON(w, http.StatusOK, ctrl.View())
	})

	r.Post("/sort/toggle", func(w http.ResponseWriter, req *http.Request) {
		dir := ctrl.ToggleSort(req.Context())
		writeJSON(w, http.StatusOK, map[string]string{"sort_direction": dir})
	})

	r.Post("/search", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ctrl.SetSearch(in.Query)
		writeJSON(w, http.StatusOK, ctrl.View())
	})

	r.Post("/filter/date", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ctrl.SetDateFilter(in.Date)
		writeJSON(w, http.StatusOK, ctrl.View())
	})

	r.Post("/filter/quick/{range}", func(w http.ResponseWriter, req *http.Request) {
		ctrl.SetQuickRange(chi.URLParam(req, "range"))
		writeJSON(w, http.StatusOK, ctrl.View())
	})

	r.Post("/stat/{stat}", func(w http.ResponseWriter, req *http.Request) {
		ctrl.SelectStat(chi.URLParam(req, "stat"))
		writeJSON(w, http.StatusOK, ctrl.View())
	})

	r.Post("/manual", func(w http.ResponseWriter, req *http.Request) {
		var in dashboard.ManualInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		rec, err := ctrl.AddManual(req.Context(), in)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Put("/manual", func(w http.ResponseWriter, req *http.Request) {
		var in dashboard.ManualInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		rec, err := ctrl.UpdateManual(req.Context(), in)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Delete("/manual/{id}", func(w http.ResponseWriter, req *http.Request) {
		confirmed := req.URL.Query().Get("confirm") == "true"
		if err := ctrl.DeleteManual(req.Context(), chi.URLParam(req, "id"), confirmed); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	})

	r.Get("/clipboard/{id}", func(w http.ResponseWriter, req *http.Request) {
		text, ok := ctrl.ClipboardText(chi.URLParam(req, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

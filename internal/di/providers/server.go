package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pausememo/pausememo/internal/api"
	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/logger"
	"github.com/pausememo/pausememo/internal/service"
)

// Version is stamped into the API document. Overridden at link time.
var Version = "dev"

// APIServerHandle wraps the API handler so its rate limiter is stopped.
type APIServerHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdownable.
func (h *APIServerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAPIServer provides the HTTP API handler.
func ProvideAPIServer(i do.Injector) (*APIServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	schedulerHandle := do.MustInvoke[*SchedulerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Capture:   do.MustInvoke[*service.CaptureService](i),
		Resume:    do.MustInvoke[*service.ResumeService](i),
		History:   do.MustInvoke[*service.HistoryService](i),
		Summary:   do.MustInvoke[*service.SummaryService](i),
		Settings:  do.MustInvoke[*service.SettingsService](i),
		Data:      do.MustInvoke[*service.DataService](i),
		Tags:      do.MustInvoke[*service.TagService](i),
		Reminders: schedulerHandle.Scheduler,
	}

	handler := api.NewServer(storeHandle.Backend, services, sseHandle.Manager, log.Component("api"), api.Options{
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
	})

	return &APIServerHandle{Server: handler}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	apiHandle := do.MustInvoke[*APIServerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiHandle.Server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

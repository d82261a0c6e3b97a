package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"propintel/internal/config"
)

type App struct {
	log    *slog.Logger
	server *http.Server
	port   int
}

func New(log *slog.Logger, handler http.Handler, cfg config.HTTPConfig) *App {
	return &App{
		log: log,
		server: &http.Server{
			Addr:         net.JoinHostPort("", strconv.Itoa(cfg.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		port: cfg.Port,
	}
}

// MustRun запускает сервер и паникует при ошибке.
func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run блокируется до остановки сервера.
func (a *App) Run() error {
	const op = "httpapp.Run"

	a.log.Info("http server started", slog.String("op", op), slog.Int("port", a.port))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop дожидается завершения активных запросов в пределах ctx.
func (a *App) Stop(ctx context.Context) {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).Info("stopping http server", slog.Int("port", a.port))

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/accountill/internal/compose"
	"github.com/MrJamesThe3rd/accountill/internal/config"
	"github.com/MrJamesThe3rd/accountill/internal/delivery"
	accountillHttp "github.com/MrJamesThe3rd/accountill/internal/http"
	invoiceHandler "github.com/MrJamesThe3rd/accountill/internal/http/invoice"
	"github.com/MrJamesThe3rd/accountill/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open artifact store", "backend", cfg.Artifact.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	transport, err := newTransport(cfg)
	if err != nil {
		slog.Error("failed to create mail transport", "error", err)
		os.Exit(1)
	}

	var (
		compositor = compose.New(compose.WithCreator(cfg.PDF.Creator))
		notifier   = notify.New(transport, store,
			notify.WithSender(notify.Sender{Name: cfg.Mail.FromName, Address: cfg.Mail.FromAddress}),
			notify.WithRegistrySize(cfg.Mail.History),
		)
		dispatcher = delivery.New(compositor, store, notifier, delivery.WithDefaultPageFormat(cfg.PDF.PageFormat))
	)

	invoiceH := invoiceHandler.NewHandler(dispatcher, notifier).
		WithMaxBody(cfg.Server.MaxBodyBytes)

	router := accountillHttp.New(accountillHttp.Options{
		Timeout:        cfg.Server.Timeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}, invoiceH)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("starting server",
			"port", server.Addr,
			"artifact_backend", cfg.Artifact.Backend,
			"mail_transport", transport.Name(),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	if err := notifier.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to wait for pending emails", "error", err)
	}
}

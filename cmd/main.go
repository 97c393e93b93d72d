package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mediumish/internal/config"
	"mediumish/internal/handlers"
	"mediumish/internal/logger"
	"mediumish/internal/notify"
	"mediumish/internal/repository"
	"mediumish/internal/repository/db"
	"mediumish/internal/server"
	"mediumish/internal/service"
	"mediumish/internal/session"
)

const shutdownTimeout = 10 * time.Second

// @title           Mediumish API
// @version         1.0
// @description     Blogging and social backend: accounts, posts, follows, reading lists and search.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.New(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.InitDB(ctx, cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer closeDB(conn, log)

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		log.Fatalw("failed to configure notifier", "err", err)
	}

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Config{
		Issuer:        session.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Notifier:      notifier,
		ResetURL:      cfg.Auth.ResetURL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins...))

	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port)

	waitForShutdown(ctx, srv, log)
}

// newNotifier prefers SMTP and falls back to logging reset links when no host is configured.
func newNotifier(cfg *config.Config, log *logger.Logger) (notify.Notifier, error) {
	if cfg.SMTP.Host == "" {
		log.Warnw("smtp.host not set; password reset emails will only be logged")
		return notify.NewLogNotifier(log), nil
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until ctx is cancelled by a signal, then drains in-flight requests.
func waitForShutdown(ctx context.Context, srv *server.Server, log *logger.Logger) {
	<-ctx.Done()
	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

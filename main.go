package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pliu/messenger/internal/auth"
	"github.com/pliu/messenger/internal/config"
	"github.com/pliu/messenger/internal/email"
	"github.com/pliu/messenger/internal/handlers"
	"github.com/pliu/messenger/internal/middleware"
	"github.com/pliu/messenger/internal/service"
	"github.com/pliu/messenger/internal/store"
	"github.com/pliu/messenger/internal/store/gormstore"
	"github.com/pliu/messenger/internal/store/sqlstore"
)

func main() {
	addr := flag.String("addr", "", "http service address (overrides ADDR)")
	verbose := flag.Bool("v", false, "Enable verbose logging (LevelInfo)")
	veryVerbose := flag.Bool("vv", false, "Enable very verbose logging (LevelDebug)")
	flag.Parse()

	setLogLevel(*verbose, *veryVerbose)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("main: Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	st, err := openStore(cfg)
	if err != nil {
		slog.Error("main: Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	services := service.New(st, auth.NewBcryptHasher(cfg.BcryptCost), time.Now)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	mailer := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	router := &handlers.Router{
		Auth: &handlers.AuthHandler{
			Services: services,
			Tokens:   tokens,
			Codes:    auth.NewResetCodes(cfg.ResetCodeTTL),
			Mailer:   mailer,
		},
		Users:         &handlers.UserHandler{Services: services},
		Chats:         &handlers.ChatHandler{Services: services},
		Channels:      &handlers.ChannelHandler{Services: services},
		SavedMessages: &handlers.SavedMessageHandler{Services: services},
		Authenticate: middleware.AuthMiddleware(tokens, middleware.AdminCredential{
			Username: cfg.SecurityUsername,
			Password: cfg.SecurityPassword,
		}),
	}
	if !cfg.AdminEnabled() {
		slog.Warn("main: SECURITY_USERNAME/SECURITY_PASSWORD not set, admin access is disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("main: Starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("main: Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("main: Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("main: Server shutdown failed", "error", err)
	}
	slog.Info("main: Server exited")
}

func openStore(cfg *config.Config) (store.Store, error) {
	slog.Debug("main: Opening storage", "backend", cfg.StoreBackend, "driver", cfg.DBDriver)
	if cfg.StoreBackend == "gorm" {
		if cfg.DBDriver != "sqlite3" {
			slog.Warn("main: The gorm backend only supports SQLite, ignoring DB_DRIVER", "driver", cfg.DBDriver)
		}
		return gormstore.New(cfg.DBDSN)
	}
	return sqlstore.New(cfg.DBDriver, cfg.DBDSN)
}

// setLogLevel configures the logging level based on the provided flags
func setLogLevel(verbose, veryVerbose bool) {
	logLevel := slog.LevelWarn
	if veryVerbose {
		logLevel = slog.LevelDebug
	} else if verbose {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

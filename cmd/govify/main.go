package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HerbHall/govify/internal/chatproxy"
	"github.com/HerbHall/govify/internal/config"
	"github.com/HerbHall/govify/internal/interactions"
	"github.com/HerbHall/govify/internal/server"
	"github.com/HerbHall/govify/internal/store"
	"github.com/HerbHall/govify/internal/suggest"
	"github.com/HerbHall/govify/internal/version"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "chat":
			os.Exit(runChat(os.Args[2:]))
		case "version":
			fmt.Println(version.Info())
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	envFile := flag.String("env-file", "", "path to a .env file (default: ./.env if present)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Govify server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Info("no configuration file found, using defaults and environment",
			zap.String("component", "config"),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, viperCfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close resources", zap.Error(err))
		}
	}()
	srv := a.server

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Govify server ready", zap.String("addr", a.addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("Govify server stopped")
}

// app is the assembled server plus the resources it must release on exit.
type app struct {
	server  *server.Server
	addr    string
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// newApp wires the HTTP server from configuration. The chat proxy keeps no
// state; the only persistent store is the opt-in interaction log.
func newApp(ctx context.Context, v *viper.Viper, logger *zap.Logger) (*app, error) {
	cfg := config.New(v)
	a := &app{}

	var readyCheck server.ReadinessChecker
	routes := []server.RouteRegistrar{}

	if cfg.GetBool("interactions.enabled") {
		dbPath := cfg.GetString("interactions.path")
		db, err := store.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open interaction log database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if err := db.CheckVersion(ctx, version.Short()); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("interaction log version check: %w", err)
		}
		ilog, err := interactions.NewSQLiteLog(ctx, db)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		n, err := ilog.Count(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		readyCheck = db.Ping
		routes = append(routes, interactions.NewHandler(ilog, logger.Named("interactions")))

		logger.Info("interaction log initialized",
			zap.String("component", "interactions"),
			zap.String("path", dbPath),
			zap.Int("entries", n),
		)
	}

	// Assistant proxy configuration is read once here and passed down.
	assistantCfg := chatproxy.DefaultConfig()
	if err := cfg.Sub("assistant").Unmarshal(&assistantCfg); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("invalid assistant configuration: %w", err)
	}
	if !assistantCfg.HasCredential() {
		logger.Warn("assistant API key is not set; chat requests will return a configuration error",
			zap.String("component", "chatproxy"),
		)
	}
	logger.Info("assistant proxy configured",
		zap.String("component", "chatproxy"),
		zap.Object("assistant", assistantCfg),
	)

	routes = append(routes,
		chatproxy.NewHandler(assistantCfg, logger.Named("chatproxy")),
		suggest.NewHandler(logger.Named("suggest")),
	)

	srvCfg := server.DefaultConfig()
	if err := cfg.Sub("server").Unmarshal(&srvCfg); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	a.server = server.New(srvCfg, logger, readyCheck, routes...)
	a.addr = srvCfg.Addr()
	return a, nil
}

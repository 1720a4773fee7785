package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/latoulicious/pokedex/internal/api"
	"github.com/latoulicious/pokedex/internal/app"
	"github.com/latoulicious/pokedex/internal/config"
	"github.com/latoulicious/pokedex/internal/version"
	"github.com/latoulicious/pokedex/pkg/database/repository"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	cfg, err := config.NewConfigManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	logger := a.Logger("system")

	if err := a.ScheduleLogPruning(); err != nil {
		return err
	}
	a.Start()

	if cfg.GetLoggerConfig().Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Dependencies{
		Service:  a.Service,
		Stats:    a.Manager,
		Gatherer: a.Registry,
	}
	if cfg.GetLoggerConfig().SaveToDB {
		deps.Logs = repository.NewSyncLogRepository(a.DB)
	}

	serverCfg := cfg.GetServerConfig()
	server := &http.Server{
		Addr:         serverCfg.Addr,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", map[string]interface{}{
			"addr":    serverCfg.Addr,
			"version": version.Get().Version,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sc:
		logger.Info("Shutting down gracefully", map[string]interface{}{"signal": sig.String()})
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", err, nil)
		return err
	}
	logger.Info("HTTP server shutdown complete", nil)
	return nil
}

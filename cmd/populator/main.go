package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/latoulicious/pokedex/internal/app"
	"github.com/latoulicious/pokedex/internal/config"
	"github.com/latoulicious/pokedex/pkg/pokedex/service"
)

func main() {
	once := flag.Bool("once", false, "Run a single population pass and exit")
	pages := flag.Int("pages", 0, "Override the configured number of pages")
	pageSize := flag.Int("page-size", 0, "Override the configured page size (1-100)")
	flag.Parse()

	if err := run(*once, *pages, *pageSize); err != nil {
		log.Fatalf("Populator failed: %v", err)
	}
}

func run(once bool, pages, pageSize int) error {
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

	popCfg := cfg.GetPopulatorConfig()
	if pages <= 0 {
		pages = popCfg.Pages
	}
	if pageSize <= 0 {
		pageSize = popCfg.PageSize
	}
	if pageSize > service.MaxPageLimit {
		return fmt.Errorf("page size %d exceeds the upstream limit of %d", pageSize, service.MaxPageLimit)
	}

	populator := service.NewPopulateService(a.Service, nil)
	logger := a.Logger("populator")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		_, err := populator.Populate(ctx, pageSize, pages)
		return err
	}

	err = a.Schedule(popCfg.Schedule, "populate", func(context.Context) {
		if _, err := populator.Populate(ctx, pageSize, pages); err != nil {
			logger.Warn("Population pass failed", map[string]interface{}{"error": err.Error()})
		}
	})
	if err != nil {
		return err
	}
	if err := a.ScheduleLogPruning(); err != nil {
		return err
	}

	logger.Info("Populator scheduled", map[string]interface{}{
		"schedule":  popCfg.Schedule,
		"pages":     pages,
		"page_size": pageSize,
	})
	a.Start()

	<-ctx.Done()
	logger.Info("Shutting down populator", nil)
	return nil
}

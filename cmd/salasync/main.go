// Command salasync syncs patient reports from Drive room folders into a registry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/salasync/internal/adapters/driven/auth"
	"github.com/custodia-labs/salasync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/salasync/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/salasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/salasync/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/salasync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/salasync/internal/adapters/driving/cli"
	"github.com/custodia-labs/salasync/internal/connectors/google"
	"github.com/custodia-labs/salasync/internal/connectors/google/drive"
	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/core/services"
	"github.com/custodia-labs/salasync/internal/extraction"
	"github.com/custodia-labs/salasync/internal/logger"
	"github.com/custodia-labs/salasync/internal/normalisers"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env is normal
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	cli.SetVersion(version)

	settings, err := settingsService.Get()
	if err != nil {
		// Settings commands must still work to repair a bad value
		logger.Warn("invalid settings: %v", err)
		cli.SetServices(cli.Services{Settings: settingsService})
		return cli.Execute(ctx)
	}

	store, err := openStore(ctx, settings.Registry)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("closing registry: %v", cerr)
		}
	}()

	recorder := prometheus.NewRecorder()
	svcs := cli.Services{
		Registry: services.NewRegistryService(store),
		Settings: settingsService,
		Metrics:  recorder,
	}

	traverser, fetcher, err := openDrive(ctx, settings)
	if err != nil {
		return err
	}
	if traverser != nil {
		merger := services.NewRecordMerger(store, settings.Sync.MergePolicy)
		svcs.Sync = services.NewSyncOrchestrator(
			traverser, fetcher, extraction.New(), merger, settings.Sync, recorder,
		)
		svcs.Folders = services.NewFolderService(traverser)
	} else {
		logger.Debug("no Drive credentials configured, sync commands disabled")
	}

	cli.SetServices(svcs)
	return cli.Execute(ctx)
}

func openStore(ctx context.Context, cfg domain.RegistrySettings) (driven.RecordStore, error) {
	switch cfg.Backend {
	case domain.BackendRedis:
		return redis.NewStore(ctx, cfg.RedisAddr)
	case domain.BackendMemory:
		return memory.NewRecordStore(), nil
	default:
		return sqlite.NewStore(cfg.DataDir)
	}
}

// openDrive returns nil adapters when no credentials are configured.
func openDrive(ctx context.Context, settings *domain.AppSettings) (*drive.Traverser, *drive.Fetcher, error) {
	if !settings.Auth.IsConfigured() {
		return nil, nil, nil
	}

	provider, err := auth.NewTokenProvider(ctx, settings.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("creating token provider: %w", err)
	}
	svc, err := google.NewDriveService(ctx, google.NewTokenSource(ctx, provider))
	if err != nil {
		return nil, nil, err
	}

	limiter := google.NewRateLimiter(google.RateLimitConfig{
		RequestsPerSecond: settings.Drive.RequestsPerSecond,
		BurstSize:         settings.Drive.Burst,
	})
	cfg := drive.ConfigFromSettings(settings.Drive)
	return drive.NewTraverser(svc, limiter, cfg),
		drive.NewDriveFetcher(svc, limiter, normalisers.Default(), cfg),
		nil
}

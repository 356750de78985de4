package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/kairos-face-client/internal/config"
	"github.com/samvad-hq/kairos-face-client/internal/logger"
	"github.com/samvad-hq/kairos-face-client/internal/pageimage"
	"github.com/samvad-hq/kairos-face-client/internal/storage"
	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
	"github.com/samvad-hq/kairos-face-client/pkg/publishers"
)

// App bundles the client, journal and publishers used by the CLI. Close must be
// called to release the journal and publisher connections.
type App struct {
	Client *kairos.Client
	Runner *Runner
	Store  storage.Store

	fanout *publishers.Fanout
	log    logger.Logger
}

// New builds the runtime from cfg. overrides take precedence over the configured
// client defaults.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, overrides kairos.Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := kairos.New(cfg.KairosDefaults(), overrides, kairos.WithLogger(log))
	clientCfg := client.Config()
	log.InfoObj("kairos client configured", "client_config", map[string]any{
		"base_url":        clientCfg.BaseURL,
		"app_id_set":      clientCfg.AppID != "",
		"timeout_seconds": int(clientCfg.Timeout.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		RecordTTL:       cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	}
	store, err := storage.NewStore(cfg.JournalType, cfg.JournalPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"record_ttl_seconds":       int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	resolver := pageimage.NewResolver(nil)

	var pub EventPublisher
	if fanout.Size() > 0 {
		pub = fanout
	}

	return &App{
		Client: client,
		Runner: NewRunner(client, resolver, pub, store, log),
		Store:  store,
		fanout: fanout,
		log:    log,
	}, nil
}

// buildFanout loads the publishers file when one is configured. An empty path
// yields an empty fanout.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil, log), nil
	}

	file, err := publishers.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	routes, err := publishers.Build(ctx, file.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]any, 0, len(routes))
	for _, r := range routes {
		summaries = append(summaries, map[string]any{
			"id":         r.ID,
			"type":       r.Type,
			"operations": r.Operations,
		})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(routes, log), nil
}

// Close releases the journal and any publisher connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.fanout != nil {
		if err := a.fanout.Close(); err != nil {
			a.log.ErrorObj("publishers close failed", "error", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.log.ErrorObj("journal close failed", "error", err)
		}
	}
}

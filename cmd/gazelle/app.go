// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/gazelle/internal/buildinfo"
	"github.com/autobrr/gazelle/internal/config"
	"github.com/autobrr/gazelle/internal/database"
	"github.com/autobrr/gazelle/internal/domain"
	"github.com/autobrr/gazelle/internal/models"
	"github.com/autobrr/gazelle/internal/services/gazelle"
)

// application is the per-invocation wiring of config, cookie database and indexer.
type application struct {
	cfg     *config.AppConfig
	db      *database.DB
	cookies *models.IndexerCookieStore
	indexer *gazelle.Indexer
}

func loadConfig(flags *globalFlags) (*config.AppConfig, error) {
	cfg, err := config.New(flags.configDir, buildinfo.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if flags.dataDir != "" {
		cfg.SetDataDir(flags.dataDir)
	}

	cfg.ApplyLogConfig()
	return cfg, nil
}

func openCookieStore(ctx context.Context, cfg *config.AppConfig) (*database.DB, *models.IndexerCookieStore, error) {
	db, err := database.Open(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, models.NewIndexerCookieStore(db), nil
}

// indexerName keys the cookie cache: the configured name, else the tracker host.
func indexerName(cfg *domain.Config) (string, error) {
	if name := strings.TrimSpace(cfg.IndexerName); name != "" {
		return name, nil
	}

	parsed, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("baseUrl is not configured; set it in the config file or GAZELLE__BASE_URL")
	}
	return parsed.Host, nil
}

func newApplication(ctx context.Context, flags *globalFlags, promptPassword bool) (*application, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	password := cfg.Config.Password
	if password == "" && promptPassword {
		password, err = readPassword("Enter tracker password: ")
		if err != nil {
			return nil, err
		}
	}

	settings, err := gazelle.NewSettings(cfg.Config.BaseURL, cfg.Config.Username, password)
	if err != nil {
		return nil, fmt.Errorf("invalid tracker settings: %w", err)
	}
	settings.ImdbInTags = cfg.Config.ImdbInTags
	settings.UseFreeleechToken = cfg.Config.UseFreeleechToken

	name, err := indexerName(cfg.Config)
	if err != nil {
		return nil, err
	}

	db, cookies, err := openCookieStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	indexer, err := gazelle.NewIndexer(gazelle.IndexerConfig{
		Name:           name,
		Settings:       settings,
		Store:          cookies.ForIndexer(name),
		RequestTimeout: cfg.RequestTimeout(),
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	loadedBaseURL, loadedUsername := cfg.Config.BaseURL, cfg.Config.Username
	cfg.RegisterReloadListener(func(updated *domain.Config) {
		if updated.BaseURL != loadedBaseURL || updated.Username != loadedUsername {
			log.Warn().Str("indexer", name).Msg("Tracker settings changed on disk, they apply on the next run")
		}
	})

	log.Debug().Str("indexer", name).Str("database", db.Path()).Msg("Gazelle indexer ready")

	return &application{
		cfg:     cfg,
		db:      db,
		cookies: cookies,
		indexer: indexer,
	}, nil
}

func (a *application) Close() {
	if err := a.indexer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close indexer")
	}
	if err := a.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}

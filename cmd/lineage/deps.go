package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/config"
	"github.com/ersonp/lineage/internal/infrastructure/logging"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
	"github.com/ersonp/lineage/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Logger        *log.Logger
	FamilyHandler *handlers.FamilyHandler
	MediaHandler  *handlers.MediaHandler
	ReportHandler *handlers.ReportHandler
	AuditHandler  *handlers.AuditHandler
	ImportHandler *handlers.ImportHandler
}

// withDeps loads config, opens the selected tree and builds the handlers,
// then calls the provided function. It handles cleanup automatically and
// writes the metrics textfile when one is configured.
func withDeps(ctx context.Context, fn func(*Deps) error) (err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	sqlitePath, err := resolveTreePath(cwd, cfg)
	if err != nil {
		return err
	}

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: sqlitePath})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()
	relationalDB.SetLogger(logger)

	// Ensure schema exists
	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	m := metrics.New()
	if path := metricsPath(cfg); path != "" {
		defer func() {
			if werr := m.WriteTextfile(path); werr != nil {
				logger.Warn("could not write metrics", "path", path, "err", werr)
			}
		}()
	}

	directory := services.NewDirectoryService(relationalDB)
	lineage := services.NewLineageService(relationalDB)
	relations := services.NewRelationService(relationalDB)
	media := services.NewMediaQueryService(relationalDB, lineage)
	importService := services.NewImportService(directory, logger)

	logger.Debug("opened tree", "tree", treeName(), "path", sqlitePath)

	return fn(&Deps{
		Config:        cfg,
		Logger:        logger,
		FamilyHandler: handlers.NewFamilyHandler(directory),
		MediaHandler:  handlers.NewMediaHandler(directory),
		ReportHandler: handlers.NewReportHandler(lineage, relations, media, directory, m, logger),
		AuditHandler:  handlers.NewAuditHandler(directory),
		ImportHandler: handlers.NewImportHandler(importService, logger),
	})
}

// resolveTreePath returns the database of the selected tree. A configured
// sqlite path overrides the per-tree location.
func resolveTreePath(cwd string, cfg *config.Config) (string, error) {
	if cfg.SQLite.Path != "" {
		return cfg.SQLite.Path, nil
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return "", fmt.Errorf("loading trees: %w", err)
	}
	name := treeName()
	if _, err := trees.Get(name); err != nil {
		return "", fmt.Errorf("%w: %w", ports.ErrNotFound, err)
	}
	return config.SQLitePathForTree(cwd, name), nil
}

func treeName() string {
	if globalTree == "" {
		return handlers.DefaultTree
	}
	return globalTree
}

func metricsPath(cfg *config.Config) string {
	if globalMetricsFile != "" {
		return globalMetricsFile
	}
	return cfg.Metrics.Textfile
}

// openSQLite opens the storage of one tree.
func openSQLite(cfg config.SQLiteConfig) (ports.RelationalDB, error) {
	repo, err := sqlite.NewRepository(cfg)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// newTreesHandler creates a TreesHandler backed by SQLite.
func newTreesHandler() *handlers.TreesHandler {
	return handlers.NewTreesHandler(openSQLite)
}

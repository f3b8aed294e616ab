package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"framekeep/pkg/commit"
	"framekeep/pkg/config"
	"framekeep/pkg/store"
)

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if rootDir != "" {
		cfg.Root = rootDir
	}

	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore(cfg config.Config) (*store.Store, error) {
	return store.Open(cfg.DatabasePath)
}

// storeRecords adapts the SQLite store to the commit engine's Records
// interface.
type storeRecords struct {
	store *store.Store
}

func (r storeRecords) Resume(ctx context.Context, folderName string) (commit.Resume, bool, error) {
	p, err := r.store.Progress(ctx, folderName)
	if errors.Is(err, store.ErrNoProgress) {
		return commit.Resume{}, false, nil
	}
	if err != nil {
		return commit.Resume{}, false, err
	}

	return commit.Resume{
		AnchorName:     p.AnchorName,
		AnchorOriginal: p.AnchorOriginal,
		KeepCount:      p.KeepCount,
	}, true, nil
}

func (r storeRecords) SaveResume(ctx context.Context, folderName string, resume commit.Resume) error {
	return r.store.SaveProgress(ctx, folderName, store.Progress{
		AnchorName:     resume.AnchorName,
		AnchorOriginal: resume.AnchorOriginal,
		KeepCount:      resume.KeepCount,
	})
}

func (r storeRecords) ClearDecisions(ctx context.Context, folderName string) error {
	return r.store.ClearDecisions(ctx, folderName)
}

func newEngine(cfg config.Config, logger *slog.Logger, records commit.Records, onProgress func(stage string, processed, total int)) *commit.Engine {
	return commit.New(commit.Config{
		Root:       cfg.Root,
		Pattern:    cfg.Pattern,
		Logger:     logger,
		Records:    records,
		Journal:    cfg.Journal,
		OnProgress: onProgress,
	})
}

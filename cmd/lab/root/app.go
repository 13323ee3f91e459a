package root

import (
	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/config"
	"github.com/mtimit/gamify-product-lab/internal/lab"
	"github.com/mtimit/gamify-product-lab/internal/logging"
	"github.com/mtimit/gamify-product-lab/internal/storage"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

// app is what every command works with once the database is open.
type app struct {
	s *lab.Session
	f ui.Formatter
}

func openApp(cmd *cobra.Command) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	path := cfg.DBPath
	if path == "" {
		if path, err = storage.DefaultDBPath(); err != nil {
			return nil, nil, err
		}
	}

	log := logging.New(cfg)
	ctx := cmd.Context()
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}

	opts := []lab.Option{lab.WithLogger(log)}
	if cfg.NoQuests {
		opts = append(opts, lab.WithoutDefaultQuests())
	}
	s, err := lab.Open(ctx, db, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Debug("session open", "db", path)
	return &app{s: s, f: ui.NewFormatter(cfg.Tag())}, cleanup, nil
}

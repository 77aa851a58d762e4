package main

import (
	"context"
	"os"
	"time"

	"librarycat/internal/catalog"
	"librarycat/internal/config"
	"librarycat/internal/logging"
	"librarycat/internal/platform/postgres"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var demoBooks = []catalog.CreateBookInput{
	{
		Title:       "Dune",
		Editor:      "Chilton Books",
		Description: "Set on the desert planet Arrakis.",
		Authors:     []string{"Frank Herbert"},
		Categories:  []string{"Fiction", "Science Fiction"},
	},
	{
		Title:      "Dune Messiah",
		Editor:     "Putnam",
		Authors:    []string{"Frank Herbert"},
		Categories: []string{"Fiction", "Science Fiction"},
	},
	{
		Title:      "The Left Hand of Darkness",
		Editor:     "Ace Books",
		Authors:    []string{"Ursula K. Le Guin"},
		Categories: []string{"Fiction", "Science Fiction"},
	},
	{
		Title:      "The Google Story",
		Subtitle:   "Inside the Hottest Business, Media, and Technology Success of Our Time",
		Editor:     "Delacorte Press",
		Authors:    []string{"David A. Vise", "Mark Malseed"},
		Categories: []string{"Business & Economics"},
	},
	{
		Title:      "Structure and Interpretation of Computer Programs",
		Editor:     "MIT Press",
		Authors:    []string{"Harold Abelson", "Gerald Jay Sussman"},
		Categories: []string{"Computers"},
	},
}

func main() {
	config.LoadEnvFiles()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log, closer := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("seed failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	pool, err := postgres.Open(ctx, cfg.DSN, 2*time.Second)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log); err != nil {
		return err
	}

	// Seeding needs no provider; every demo book carries full fields.
	svc := catalog.NewService(catalog.NewPostgresRepo(pool, cfg.DBTimeout), nil, log)

	existing, err := svc.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("catalog already has books, skipping seed", zap.Int("books", len(existing)))
		return nil
	}

	for _, in := range demoBooks {
		if _, err := svc.CreateBook(ctx, in); err != nil {
			return err
		}
	}
	log.Info("seed complete", zap.Int("books", len(demoBooks)))
	return nil
}

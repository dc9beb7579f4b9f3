// Command seed creates or refreshes teams and manager accounts from a YAML file.
//
//	seed -file teams.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/database"
	"github.com/kartsetup/setupsheet/internal/team"
)

type seedConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`
}

func main() {
	file := flag.String("file", "teams.yaml", "path to the seed file")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var cfg seedConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		slog.Error("failed to read seed file", "file", *file, "error", err)
		os.Exit(1)
	}
	seed, err := parseSeed(raw)
	if err != nil {
		slog.Error("invalid seed file", "file", *file, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: 2})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	s := &seeder{
		teams:      team.NewRepository(db.Pool()),
		users:      auth.NewRepository(db.Pool()),
		bcryptCost: cfg.BcryptCost,
	}
	if err := s.apply(ctx, seed); err != nil {
		slog.Error("seeding failed", "error", err)
		db.Close()
		os.Exit(1)
	}

	slog.Info("seed applied", "teams", len(seed.Teams), "superAdmins", len(seed.SuperAdmins))
}

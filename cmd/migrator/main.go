// Применяет или откатывает миграции схемы.
// Запуск: go run ./cmd/migrator -direction up
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"propintel/internal/config"
	"propintel/internal/lib/logger/sl"
	"propintel/internal/storage/migrations"
)

func main() {
	direction := flag.String("direction", string(migrations.Up), "up или down")
	force := flag.Int("force", -1, "сбросить флаг dirty, выставив версию")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect", sl.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	if *force >= 0 {
		if err := migrations.Force(pool, *force); err != nil {
			log.Error("failed to force version", sl.Err(err))
			os.Exit(1)
		}
		log.Info("version forced", slog.Int("version", *force))
		return
	}

	if err := migrations.Run(pool, migrations.Direction(*direction), log); err != nil {
		log.Error("migration failed", sl.Err(err))
		os.Exit(1)
	}
}

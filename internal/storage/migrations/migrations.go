// Package migrations применяет встроенные SQL-миграции к Postgres.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"propintel/internal/lib/logger/sl"
)

//go:embed sql/*.sql
var files embed.FS

// Direction — направление миграции.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Run применяет (или откатывает) все миграции. Повторный вызов без новых миграций не ошибка.
func Run(pool *pgxpool.Pool, dir Direction, log *slog.Logger) error {
	const op = "migrations.Run"

	m, err := newMigrate(pool)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn("failed to close migration source", sl.Err(srcErr))
		}
		if dbErr != nil {
			log.Warn("failed to close migration database", sl.Err(dbErr))
		}
	}()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("%s: unknown direction %q", op, dir)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply", slog.String("direction", string(dir)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	version, dirty, _ := m.Version()
	log.Info("migrations applied",
		slog.String("direction", string(dir)),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// Force сбрасывает флаг dirty, выставляя указанную версию.
func Force(pool *pgxpool.Pool, version int) error {
	const op = "migrations.Force"

	m, err := newMigrate(pool)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()

	if err := m.Force(version); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func newMigrate(pool *pgxpool.Pool) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "pgx5", driver)
}

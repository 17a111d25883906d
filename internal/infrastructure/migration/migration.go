// Package migration applies the SQL files under db/migrations with golang-migrate.
package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

// Runner wraps a migrator bound to one database and source directory.
type Runner struct {
	m      *migrate.Migrate
	source string
	logger *logging.Logger
}

// Open binds the migrations in dir to the database at dbURL.
func Open(dbURL, dir string, logger *logging.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(dbURL) == "" {
		return nil, errors.New("database url is required")
	}

	sourceURL := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Runner{m: m, source: sourceURL, logger: logger.Named("migration")}, nil
}

// Up applies every pending migration. An up-to-date database is not an error.
func (r *Runner) Up() error {
	if err := ignoreNoChange(r.m.Up()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	r.logger.Info("migrations applied", "source", r.source)
	return nil
}

// Down rolls back the given number of migrations.
func (r *Runner) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("down steps must be > 0")
	}
	if err := ignoreNoChange(r.m.Steps(-steps)); err != nil {
		return fmt.Errorf("roll back %d migration(s): %w", steps, err)
	}
	r.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

// Goto migrates up or down to the target version.
func (r *Runner) Goto(target uint) error {
	if err := ignoreNoChange(r.m.Migrate(target)); err != nil {
		return fmt.Errorf("migrate to version %d: %w", target, err)
	}
	r.logger.Info("migrated", "version", target)
	return nil
}

// Force sets the recorded version without running any migration.
func (r *Runner) Force(version int) error {
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	r.logger.Warn("migration version forced", "version", version)
	return nil
}

// Version reports the applied version. ok is false on an empty database.
func (r *Runner) Version() (version uint, dirty, ok bool, err error) {
	version, dirty, err = r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("read version: %w", err)
	}
	return version, dirty, true, nil
}

func (r *Runner) Close() {
	srcErr, dbErr := r.m.Close()
	if srcErr != nil {
		r.logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		r.logger.Warn("close migration db", "error", dbErr)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// ResolveDir returns the first existing directory among explicit,
// MIGRATIONS_DIR, ./db/migrations and /app/db/migrations.
func ResolveDir(explicit string) (string, error) {
	candidates := []string{
		strings.TrimSpace(explicit),
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked --dir, MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func ParseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func ParseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func ParseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

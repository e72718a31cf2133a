package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"time"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

// migrationLockKey — ключ advisory-блокировки, чтобы миграции
// не выполнялись параллельно несколькими экземплярами сервиса.
const migrationLockKey int64 = 0x6d7573746f726531

const migrationTimeout = 2 * time.Minute

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_\-]+)\.(up|down)\.sql$`)

// Migration описывает одну версионированную миграцию схемы.
type Migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationStatus показывает применена ли миграция.
type MigrationStatus struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// parseMigrationFilename разбирает имя файла вида 0001_init.up.sql.
func parseMigrationFilename(name string) (version int64, title string, direction string, err error) {
	match := migrationFilePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, "", "", fmt.Errorf("migration filename %q does not match NNNN_name.(up|down).sql", name)
	}

	version, err = strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("migration filename %q: parse version: %w", name, err)
	}
	if version <= 0 {
		return 0, "", "", fmt.Errorf("migration filename %q: version must be positive", name)
	}

	return version, match[2], match[3], nil
}

// loadMigrations читает и спаривает up/down файлы из встроенной FS.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.Glob(fsys, "sql/migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}

	builder := make(map[int64]*Migration)
	for _, path := range entries {
		base := path[len("sql/migrations/"):]
		version, title, direction, err := parseMigrationFilename(base)
		if err != nil {
			return nil, err
		}

		body, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", path, err)
		}

		m, ok := builder[version]
		if !ok {
			m = &Migration{Version: version, Name: title}
			builder[version] = m
		}
		if m.Name != title {
			return nil, fmt.Errorf("migration version %d has mismatched names %q and %q", version, m.Name, title)
		}

		switch direction {
		case "up":
			if m.UpSQL != "" {
				return nil, fmt.Errorf("duplicate up migration for version %d", version)
			}
			m.UpSQL = string(body)
		case "down":
			if m.DownSQL != "" {
				return nil, fmt.Errorf("duplicate down migration for version %d", version)
			}
			m.DownSQL = string(body)
		}
	}

	migrations := make([]Migration, 0, len(builder))
	for _, m := range builder {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration version %d has no up file", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	return migrations, nil
}

// MigrateUp применяет до steps ожидающих миграций (steps <= 0 — все).
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.withMigrationLock(ctx, func(ctx context.Context) error {
		migrations, err := loadMigrations(migrationsFS)
		if err != nil {
			return err
		}

		applied, err := s.appliedVersions(ctx)
		if err != nil {
			return err
		}

		done := 0
		for _, m := range migrations {
			if _, ok := applied[m.Version]; ok {
				continue
			}
			if steps > 0 && done >= steps {
				break
			}
			if err := s.applyMigration(ctx, m); err != nil {
				return err
			}
			done++
		}
		return nil
	})
}

// MigrateDown откатывает steps последних применённых миграций (steps <= 0 — одну).
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.withMigrationLock(ctx, func(ctx context.Context) error {
		migrations, err := loadMigrations(migrationsFS)
		if err != nil {
			return err
		}
		byVersion := make(map[int64]Migration, len(migrations))
		for _, m := range migrations {
			byVersion[m.Version] = m
		}

		applied, err := s.appliedVersions(ctx)
		if err != nil {
			return err
		}
		versions := make([]int64, 0, len(applied))
		for v := range applied {
			versions = append(versions, v)
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })

		for i, version := range versions {
			if i >= steps {
				break
			}
			m, ok := byVersion[version]
			if !ok {
				return fmt.Errorf("applied migration %d has no source file", version)
			}
			if m.DownSQL == "" {
				return fmt.Errorf("migration %d has no down file", version)
			}
			if err := s.revertMigration(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// MigrationStatuses возвращает список миграций с признаком применённости.
func (s *Store) MigrationStatuses(ctx context.Context) ([]MigrationStatus, error) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		st := MigrationStatus{Version: m.Version, Name: m.Name}
		if at, ok := applied[m.Version]; ok {
			st.Applied = true
			st.AppliedAt = at
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (s *Store) withMigrationLock(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for migrations: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

func (s *Store) ensureMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int64]time.Time)
	for rows.Next() {
		var version int64
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
			m.Version, m.Name,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		return nil
	})
}

func (s *Store) revertMigration(ctx context.Context, m Migration) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
			return fmt.Errorf("revert migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM schema_migrations WHERE version = $1", m.Version,
		); err != nil {
			return fmt.Errorf("unrecord migration %d: %w", m.Version, err)
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

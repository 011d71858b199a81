package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrUnsupportedURL = errors.New("unsupported database url")

// Migrator is implemented by stores that keep a schema.
type Migrator interface {
	ApplyMigrations(ctx context.Context) error
}

// Open picks a store from a DATABASE_URL style connection string:
//
//	memory://                    in-memory, seeded with DemoTasks
//	sqlite:///tasks.db           SQLite file relative to the working dir
//	sqlite:////var/lib/tasks.db  SQLite file, absolute path
//	file:/path/tasks.db?...      SQLite DSN passed through as is
//	postgres://user:pw@host/db   PostgreSQL
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (Repository, error) {
	scheme, rest, ok := strings.Cut(databaseURL, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, databaseURL)
	}

	switch strings.ToLower(scheme) {
	case "memory":
		logger.Info("store_open", slog.String("driver", "memory"))
		return NewInMemoryRepo(DemoTasks()...), nil

	case "sqlite":
		path, err := sqlitePath(rest)
		if err != nil {
			return nil, err
		}
		dsn, err := SQLiteFileDSN(path)
		if err != nil {
			return nil, fmt.Errorf("sqlite dsn: %w", err)
		}
		logger.Info("store_open", slog.String("driver", "sqlite"), slog.String("path", path))
		return NewSQLiteRepo(dsn)

	case "file":
		logger.Info("store_open", slog.String("driver", "sqlite"), slog.String("dsn", databaseURL))
		return NewSQLiteRepo(databaseURL)

	case "postgres", "postgresql":
		// never log the dsn, it carries credentials
		logger.Info("store_open", slog.String("driver", "postgres"))
		return NewPostgresRepo(ctx, databaseURL)
	}
	return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, scheme)
}

// sqlitePath follows the sqlite:///relative and sqlite:////absolute forms.
func sqlitePath(rest string) (string, error) {
	p, ok := strings.CutPrefix(rest, "///")
	if !ok || p == "" {
		return "", fmt.Errorf("%w: sqlite url needs the form sqlite:///path", ErrUnsupportedURL)
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p, nil
}

package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, dsn string) (*PostgresRepo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, completed
		FROM tasks
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[Task])
	if err != nil {
		return nil, fmt.Errorf("collect tasks: %w", err)
	}
	if out == nil {
		out = []Task{}
	}
	return out, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Task, error) {
	return getPostgresTask(ctx, r.pool, id, "")
}

func (r *PostgresRepo) Create(ctx context.Context, title, description string) (Task, error) {
	if isBlank(title) {
		return Task{}, ErrTitleRequired
	}
	rows, err := r.pool.Query(ctx, `
		INSERT INTO tasks (title, description, completed)
		VALUES (@title, @description, FALSE)
		RETURNING id, title, description, completed
	`, pgx.NamedArgs{"title": title, "description": description})
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Task])
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// Update locks the row, applies the patch and commits once.
func (r *PostgresRepo) Update(ctx context.Context, id int64, p Patch) (Task, error) {
	var out Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := getPostgresTask(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		if err := p.validate(); err != nil {
			return err
		}
		if p.Empty() {
			out = t
			return nil
		}

		t = p.apply(t)
		_, err = tx.Exec(ctx, `
			UPDATE tasks
			SET title = @title, description = @description, completed = @completed
			WHERE id = @id
		`, pgx.NamedArgs{
			"id":          id,
			"title":       t.Title,
			"description": t.Description,
			"completed":   t.Completed,
		})
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		out = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return out, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ApplyMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tasks (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT FALSE
);
	`)
	return err
}

type pgQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getPostgresTask(ctx context.Context, q pgQueryer, id int64, lock string) (Task, error) {
	rows, err := q.Query(ctx, `
		SELECT id, title, description, completed
		FROM tasks
		WHERE id = @id `+lock, pgx.NamedArgs{"id": id})
	if err != nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	t, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Task])
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

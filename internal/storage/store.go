// Package storage provides task list and user persistence over SQL databases.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"taskmanager-core/internal/config"
	apperrors "taskmanager-core/internal/errors"
	"taskmanager-core/internal/logging"
	"taskmanager-core/pkg/types"
)

// Store is the persistence interface for validated entities. Implementations
// receive entities that already passed construction, so they only deal with
// serialization and lookup failures.
type Store interface {
	SaveTaskList(ctx context.Context, list *types.TaskList) error
	GetTaskList(ctx context.Context, name string) (*types.TaskList, error)
	ListTaskListNames(ctx context.Context) ([]string, error)
	DeleteTaskList(ctx context.Context, name string) error

	SaveUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, username string) (*types.User, error)

	Close() error
}

// SQLStore implements Store over database/sql. Nested collections are kept
// as JSON columns; scalar fields get their own columns for lookups.
type SQLStore struct {
	db     *sql.DB
	logger logging.Logger
}

// Open connects to the configured database and ensures the schema exists.
func Open(cfg config.StorageConfig) (*SQLStore, error) {
	driver, err := driverName(cfg.Provider)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Provider, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	store := &SQLStore{db: db, logger: logging.WithComponent("storage")}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	store.logger.Debug("storage opened", "provider", cfg.Provider)
	return store, nil
}

// NewSQLStore wraps an existing connection, mostly useful in tests.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	store := &SQLStore{db: db, logger: logging.NewNoOpLogger()}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func driverName(provider string) (string, error) {
	switch provider {
	case "sqlite":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported storage provider: %s", provider)
	}
}

func (s *SQLStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS task_lists (
			name TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			tasks TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			id INTEGER,
			email TEXT NOT NULL,
			full_name TEXT,
			is_active BOOLEAN NOT NULL,
			task_lists TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// SaveTaskList inserts or replaces a task list by name.
func (s *SQLStore) SaveTaskList(ctx context.Context, list *types.TaskList) error {
	tasksJSON, err := json.Marshal(list.Tasks)
	if err != nil {
		return apperrors.NewSerialization("failed to marshal tasks for storage", "save_task_list", err)
	}

	query := `
		INSERT INTO task_lists (name, owner, tasks, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			owner = excluded.owner,
			tasks = excluded.tasks,
			created_at = excluded.created_at`

	_, err = s.db.ExecContext(ctx, query, list.Name, list.Owner, string(tasksJSON), list.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save task list %q: %w", list.Name, err)
	}
	s.logger.DebugContext(ctx, "task list saved", "name", list.Name, "task_count", len(list.Tasks))
	return nil
}

// GetTaskList retrieves a task list by exact name.
func (s *SQLStore) GetTaskList(ctx context.Context, name string) (*types.TaskList, error) {
	query := `SELECT name, owner, tasks, created_at FROM task_lists WHERE name = $1`

	var list types.TaskList
	var tasksJSON []byte

	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&list.Name, &list.Owner, &tasksJSON, &list.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewEntityNotFound(
				fmt.Sprintf("Task list '%s' not found", name),
			).WithDetail("task_list_name", name)
		}
		return nil, fmt.Errorf("failed to load task list %q: %w", name, err)
	}

	if err := json.Unmarshal(tasksJSON, &list.Tasks); err != nil {
		return nil, apperrors.NewSerialization("failed to unmarshal stored tasks", "get_task_list", err)
	}
	return &list, nil
}

// ListTaskListNames returns every stored list name in alphabetical order.
func (s *SQLStore) ListTaskListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM task_lists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteTaskList removes a task list, failing when it does not exist.
func (s *SQLStore) DeleteTaskList(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM task_lists WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete task list %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewEntityNotFound(
			fmt.Sprintf("Task list '%s' not found", name),
		).WithDetail("task_list_name", name)
	}
	return nil
}

// SaveUser inserts or replaces a user by username.
func (s *SQLStore) SaveUser(ctx context.Context, user *types.User) error {
	listsJSON, err := json.Marshal(user.TaskLists)
	if err != nil {
		return apperrors.NewSerialization("failed to marshal task lists for storage", "save_user", err)
	}

	query := `
		INSERT INTO users (username, id, email, full_name, is_active, task_lists)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO UPDATE SET
			id = excluded.id,
			email = excluded.email,
			full_name = excluded.full_name,
			is_active = excluded.is_active,
			task_lists = excluded.task_lists`

	var id interface{}
	if user.ID != nil {
		id = *user.ID
	}

	_, err = s.db.ExecContext(ctx, query,
		user.Username, id, user.Email, nullableString(user.FullName), user.IsActive, string(listsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.Username, err)
	}
	s.logger.DebugContext(ctx, "user saved", "username", user.Username, "list_count", len(user.TaskLists))
	return nil
}

// GetUser retrieves a user by username.
func (s *SQLStore) GetUser(ctx context.Context, username string) (*types.User, error) {
	query := `SELECT username, id, email, full_name, is_active, task_lists FROM users WHERE username = $1`

	var user types.User
	var id sql.NullInt64
	var fullName sql.NullString
	var listsJSON []byte

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username, &id, &user.Email, &fullName, &user.IsActive, &listsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewEntityNotFound(
				fmt.Sprintf("User '%s' not found", username),
			).WithDetail("username", username)
		}
		return nil, fmt.Errorf("failed to load user %q: %w", username, err)
	}

	if id.Valid {
		v := int(id.Int64)
		user.ID = &v
	}
	if fullName.Valid {
		user.FullName = fullName.String
	}
	if err := json.Unmarshal(listsJSON, &user.TaskLists); err != nil {
		return nil, apperrors.NewSerialization("failed to unmarshal stored task lists", "get_user", err)
	}
	return &user, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

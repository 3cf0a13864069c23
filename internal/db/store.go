package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasknest/internal/apperr"
	"tasknest/internal/model"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store is the entity store: constraint-enforcing access to the users and
// tasks tables. Uniqueness and cascade rules live in the schema, so they are
// applied atomically with the triggering write.
type Store struct {
	DB *sql.DB
}

// UserRecord is the stored shape of a user row. The password hash never
// leaves this package except through the authentication workflow.
type UserRecord struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	CreatedAt    int64
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) InsertUser(ctx context.Context, username, displayName, passwordHash string, createdAt int64) (int64, error) {
	query := `
		INSERT INTO users (username, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := s.DB.QueryRowContext(ctx, query, username, displayName, passwordHash, createdAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperr.Conflict("username %q is taken", username)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	query := `
		SELECT id, username, display_name, password_hash, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username))
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (*UserRecord, error) {
	query := `
		SELECT id, username, display_name, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, id))
}

// DeleteUser removes a user row; the schema cascades the delete to every
// dependent task. No command issues this today, the constraint is enforced
// regardless.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Store) InsertTask(ctx context.Context, task model.Task) (int64, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, is_completed, category, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.IsCompleted,
		string(task.Category), nullableInt(task.DueDate), task.CreatedAt, task.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	return id, nil
}

// UpdateTask replaces the full row keyed by task.ID.
func (s *Store) UpdateTask(ctx context.Context, task model.Task) error {
	query := `
		UPDATE tasks
		SET user_id = ?, title = ?, description = ?, is_completed = ?, category = ?, due_date = ?, created_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.DB.ExecContext(ctx, query,
		task.UserID, task.Title, task.Description, task.IsCompleted,
		string(task.Category), nullableInt(task.DueDate), task.CreatedAt, task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("task %d", task.ID)
	}

	return nil
}

// DeleteTask is idempotent; an absent id is not an error.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Store) FindTaskByID(ctx context.Context, id int64) (model.Task, error) {
	query := `
		SELECT id, user_id, title, description, is_completed, category, due_date, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`

	task, err := scanTask(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, apperr.NotFound("task %d", id)
		}
		return model.Task{}, fmt.Errorf("find task: %w", err)
	}

	return task, nil
}

// TasksByUser returns the user's tasks newest-first; rows created in the
// same millisecond keep insertion order.
func (s *Store) TasksByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	query := `
		SELECT id, user_id, title, description, is_completed, category, due_date, created_at, updated_at
		FROM tasks
		WHERE user_id = ?
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row rowScanner) (*UserRecord, error) {
	user := &UserRecord{}
	err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		task     model.Task
		category string
		dueDate  sql.NullInt64
	)

	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.IsCompleted, &category, &dueDate, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}

	task.Category = model.Category(category)
	if dueDate.Valid {
		value := dueDate.Int64
		task.DueDate = &value
	}

	return task, nil
}

func nullableInt(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// Package repo is the repository facade: the single entry point other
// layers use to read and mutate tasks. It maps stored rows to domain
// values, validates commands before any write, and republishes live
// snapshots after every write.
package repo

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"tasknest/internal/apperr"
	"tasknest/internal/db"
	"tasknest/internal/live"
	"tasknest/internal/model"
)

type TaskRepo struct {
	store *db.Store
	hub   *live.Hub[int64, []model.Task]
	log   *slog.Logger

	// now is swappable in tests.
	now func() int64
}

func NewTaskRepo(store *db.Store, log *slog.Logger) *TaskRepo {
	r := &TaskRepo{
		store: store,
		log:   log,
		now:   model.NowMillis,
	}
	r.hub = live.NewHub(func(userID int64) ([]model.Task, error) {
		return store.TasksByUser(context.Background(), userID)
	})
	return r
}

// WatchTasks subscribes to the user's full task list, newest-first. The
// current snapshot arrives immediately; a fresh one after every write that
// touches the user's tasks.
func (r *TaskRepo) WatchTasks(userID int64) (*live.Sub[[]model.Task], error) {
	return r.watch(userID, model.FilterAll)
}

// WatchActiveTasks narrows the stream to tasks that are not completed.
func (r *TaskRepo) WatchActiveTasks(userID int64) (*live.Sub[[]model.Task], error) {
	return r.watch(userID, model.FilterActive)
}

// WatchCompletedTasks narrows the stream to completed tasks.
func (r *TaskRepo) WatchCompletedTasks(userID int64) (*live.Sub[[]model.Task], error) {
	return r.watch(userID, model.FilterCompleted)
}

func (r *TaskRepo) watch(userID int64, filter model.Filter) (*live.Sub[[]model.Task], error) {
	if filter == model.FilterAll {
		return r.hub.Subscribe(userID, nil)
	}
	return r.hub.Subscribe(userID, filter.Apply)
}

func (r *TaskRepo) TaskByID(ctx context.Context, id int64) (model.Task, error) {
	return r.store.FindTaskByID(ctx, id)
}

// AddTask validates, stamps timestamps and inserts. Nothing is written on a
// validation failure, so subscribers see no emission either.
func (r *TaskRepo) AddTask(ctx context.Context, task model.Task) (int64, error) {
	if strings.TrimSpace(task.Title) == "" {
		return 0, apperr.Validation("task title cannot be empty")
	}

	category, err := model.ParseCategory(string(task.Category))
	if err != nil {
		return 0, apperr.Validation("%v", err)
	}
	task.Category = category

	now := r.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	id, err := r.store.InsertTask(ctx, task)
	if err != nil {
		return 0, err
	}

	r.log.Debug("task added", "id", id, "user_id", task.UserID)
	r.invalidate(task.UserID)
	return id, nil
}

// UpdateTask replaces the stored row keyed by task.ID, refreshing UpdatedAt
// first. An absent id surfaces as a not-found error.
func (r *TaskRepo) UpdateTask(ctx context.Context, task model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return apperr.Validation("task title cannot be empty")
	}

	category, err := model.ParseCategory(string(task.Category))
	if err != nil {
		return apperr.Validation("%v", err)
	}
	task.Category = category
	task.UpdatedAt = r.bump(task.UpdatedAt)

	// A full-row replace can reassign the task to another user; the prior
	// owner's subscription must drop it, so both keys get invalidated.
	prev, err := r.store.FindTaskByID(ctx, task.ID)
	if err != nil {
		return err
	}

	if err := r.store.UpdateTask(ctx, task); err != nil {
		return err
	}

	r.invalidate(task.UserID)
	if prev.UserID != task.UserID {
		r.invalidate(prev.UserID)
	}
	return nil
}

// DeleteTask is unconditional and idempotent.
func (r *TaskRepo) DeleteTask(ctx context.Context, id int64) error {
	task, err := r.store.FindTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := r.store.DeleteTask(ctx, id); err != nil {
		return err
	}

	r.invalidate(task.UserID)
	return nil
}

// ToggleCompletion flips the task's completion flag. This is a
// read-then-write sequence, not a transaction: a row deleted between the
// two steps makes the whole call a silent no-op.
func (r *TaskRepo) ToggleCompletion(ctx context.Context, id int64) error {
	task, err := r.store.FindTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	task.IsCompleted = !task.IsCompleted
	task.UpdatedAt = r.bump(task.UpdatedAt)

	if err := r.store.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	r.invalidate(task.UserID)
	return nil
}

// bump refreshes a task's UpdatedAt. Wall-clock milliseconds may not tick
// between two back-to-back mutations, so the result always lands strictly
// after prev.
func (r *TaskRepo) bump(prev int64) int64 {
	now := r.now()
	if now <= prev {
		return prev + 1
	}
	return now
}

func (r *TaskRepo) invalidate(userID int64) {
	if err := r.hub.Invalidate(userID); err != nil {
		r.log.Error("republish task snapshot", "user_id", userID, "err", err)
	}
}

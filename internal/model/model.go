package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of task categories.
type Category string

const (
	CategoryWork     Category = "WORK"
	CategoryPersonal Category = "PERSONAL"
	CategoryHealth   Category = "HEALTH"
)

// ParseCategory normalizes a raw category value. Blank means the default
// PERSONAL; anything outside the closed set is rejected.
func ParseCategory(raw string) (Category, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch Category(value) {
	case "":
		return CategoryPersonal, nil
	case CategoryWork, CategoryPersonal, CategoryHealth:
		return Category(value), nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

type User struct {
	ID          int64
	Username    string
	DisplayName string
	CreatedAt   int64
}

type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	IsCompleted bool
	Category    Category
	DueDate     *int64
	CreatedAt   int64
	UpdatedAt   int64
}

// Filter selects a completion partition of a task list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func ParseFilter(raw string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("unknown filter %q", raw)
}

// Keep reports whether the task belongs to the filter's partition.
func (f Filter) Keep(task Task) bool {
	switch f {
	case FilterActive:
		return !task.IsCompleted
	case FilterCompleted:
		return task.IsCompleted
	}
	return true
}

// Apply narrows a snapshot to the filter's partition. FilterAll returns the
// slice unchanged; the others allocate.
func (f Filter) Apply(tasks []Task) []Task {
	if f == FilterAll || f == "" {
		return tasks
	}
	kept := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Keep(task) {
			kept = append(kept, task)
		}
	}
	return kept
}

// NowMillis is the timestamp representation used across the store: epoch
// milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

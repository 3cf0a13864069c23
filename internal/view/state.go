// Package view derives presentable state from the latest task snapshot and
// local UI events. State is an immutable value; Reduce is a pure function
// and never touches the store.
package view

import (
	"time"

	"tasknest/internal/model"
)

type State struct {
	Tasks  []model.Task
	Filter model.Filter

	DraftTitle    string
	DraftCategory model.Category
	DraftDueDate  *int64

	EditOpen bool
	Editing  *model.Task

	User *model.User
	Err  string
}

func NewState() State {
	return State{
		Filter:        model.FilterAll,
		DraftCategory: model.CategoryPersonal,
	}
}

// Event is a local UI event or the arrival of a fresh task snapshot.
type Event interface{ isEvent() }

type TasksLoaded struct{ Tasks []model.Task }
type FilterChanged struct{ Filter model.Filter }
type DraftTitleChanged struct{ Title string }
type DraftCategoryChanged struct{ Category model.Category }
type DraftDueDateChanged struct{ DueDate *int64 }
type DraftCleared struct{}
type EditOpened struct{ Task model.Task }
type EditClosed struct{}
type UserChanged struct{ User *model.User }
type ErrorOccurred struct{ Message string }
type ErrorCleared struct{}

func (TasksLoaded) isEvent()          {}
func (FilterChanged) isEvent()        {}
func (DraftTitleChanged) isEvent()    {}
func (DraftCategoryChanged) isEvent() {}
func (DraftDueDateChanged) isEvent()  {}
func (DraftCleared) isEvent()         {}
func (EditOpened) isEvent()           {}
func (EditClosed) isEvent()           {}
func (UserChanged) isEvent()          {}
func (ErrorOccurred) isEvent()        {}
func (ErrorCleared) isEvent()         {}

// Reduce returns the state after applying one event. The input state is
// left untouched.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case TasksLoaded:
		s.Tasks = ev.Tasks
	case FilterChanged:
		s.Filter = ev.Filter
	case DraftTitleChanged:
		s.DraftTitle = ev.Title
		s.Err = ""
	case DraftCategoryChanged:
		s.DraftCategory = ev.Category
	case DraftDueDateChanged:
		s.DraftDueDate = ev.DueDate
	case DraftCleared:
		s.DraftTitle = ""
		s.DraftCategory = model.CategoryPersonal
		s.DraftDueDate = nil
	case EditOpened:
		task := ev.Task
		s.EditOpen = true
		s.Editing = &task
	case EditClosed:
		// closing discards any unsaved draft with the dialog
		s.EditOpen = false
		s.Editing = nil
	case UserChanged:
		s.User = ev.User
	case ErrorOccurred:
		s.Err = ev.Message
	case ErrorCleared:
		s.Err = ""
	}
	return s
}

// Filtered returns the tasks in the current filter's partition.
func (s State) Filtered() []model.Task {
	return s.Filter.Apply(s.Tasks)
}

// TodayCount counts tasks created on or after local midnight of now.
func (s State) TodayCount(now time.Time) int {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()
	count := 0
	for _, task := range s.Tasks {
		if task.CreatedAt >= midnight {
			count++
		}
	}
	return count
}

func (s State) CompletedCount() int {
	count := 0
	for _, task := range s.Tasks {
		if task.IsCompleted {
			count++
		}
	}
	return count
}

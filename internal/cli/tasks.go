package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasknest/internal/apperr"
	"tasknest/internal/live"
	"tasknest/internal/model"

	"github.com/spf13/cobra"
)

func init() {
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAdd,
	}
	addCmd.Flags().String("desc", "", "task description")
	addCmd.Flags().String("category", "", "WORK, PERSONAL or HEALTH")
	addCmd.Flags().String("due", "", "due date, YYYY-MM-DD")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the active user's tasks",
		RunE:  runList,
	}
	listCmd.Flags().String("filter", "all", "all, active or completed")

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE:  runDone,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runEdit,
	}
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("desc", "", "new description")
	editCmd.Flags().String("category", "", "new category")
	editCmd.Flags().String("due", "", "new due date, YYYY-MM-DD, or 'none' to clear")

	rootCmd.AddCommand(addCmd, listCmd, doneCmd, rmCmd, editCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	userID, err := app.currentUserID()
	if err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("desc")
	category, _ := cmd.Flags().GetString("category")
	dueFlag, _ := cmd.Flags().GetString("due")

	dueDate, err := parseDue(dueFlag)
	if err != nil {
		return err
	}

	id, err := app.Tasks.AddTask(cmd.Context(), model.Task{
		UserID:      userID,
		Title:       strings.Join(args, " "),
		Description: description,
		Category:    model.Category(category),
		DueDate:     dueDate,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added task #%d\n", id)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	userID, err := app.currentUserID()
	if err != nil {
		return err
	}

	filterFlag, _ := cmd.Flags().GetString("filter")
	filter, err := model.ParseFilter(filterFlag)
	if err != nil {
		return err
	}

	sub, err := subscribe(userID, filter)
	if err != nil {
		return err
	}
	defer sub.Close()

	renderTasks(<-sub.C())
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	task, err := app.ownedTask(cmd.Context(), id)
	if err != nil {
		// toggling an absent id stays a silent no-op
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	return app.Tasks.ToggleCompletion(cmd.Context(), task.ID)
}

func runRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	task, err := app.ownedTask(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	return app.Tasks.DeleteTask(cmd.Context(), task.ID)
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	task, err := app.ownedTask(cmd.Context(), id)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("title") {
		task.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("desc") {
		task.Description, _ = cmd.Flags().GetString("desc")
	}
	if cmd.Flags().Changed("category") {
		raw, _ := cmd.Flags().GetString("category")
		task.Category = model.Category(raw)
	}
	if cmd.Flags().Changed("due") {
		raw, _ := cmd.Flags().GetString("due")
		if raw == "none" {
			task.DueDate = nil
		} else {
			task.DueDate, err = parseDue(raw)
			if err != nil {
				return err
			}
		}
	}

	return app.Tasks.UpdateTask(cmd.Context(), task)
}

func subscribe(userID int64, filter model.Filter) (*live.Sub[[]model.Task], error) {
	switch filter {
	case model.FilterActive:
		return app.Tasks.WatchActiveTasks(userID)
	case model.FilterCompleted:
		return app.Tasks.WatchCompletedTasks(userID)
	}
	return app.Tasks.WatchTasks(userID)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func parseDue(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	due, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (expected YYYY-MM-DD)", raw)
	}
	millis := due.UnixMilli()
	return &millis, nil
}

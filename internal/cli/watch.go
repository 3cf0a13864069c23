package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasknest/internal/model"

	"github.com/spf13/cobra"
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live task list, re-rendering on every change",
		RunE:  runWatch,
	}
	watchCmd.Flags().String("filter", "all", "all, active or completed")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	fmt.Printf("Watching tasks (filter=%s), Ctrl-C to stop\n", filter)
	for {
		select {
		case tasks := <-sub.C():
			fmt.Println(time.Now().Format("15:04:05"))
			renderTasks(tasks)
		case <-sigs:
			return nil
		}
	}
}

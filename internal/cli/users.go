package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	registerCmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Register a new user and log in",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegister,
	}
	registerCmd.Flags().String("name", "", "display name (defaults to the username)")

	loginCmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in an existing user",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Prefs.ClearUserID()
			fmt.Println("Logged out")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the active user",
		RunE:  runWhoami,
	}

	langCmd := &cobra.Command{
		Use:   "lang <en|zh>",
		Short: "Set the interface language",
		Args:  cobra.ExactArgs(1),
		RunE:  runLang,
	}

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, langCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	username := args[0]

	displayName, _ := cmd.Flags().GetString("name")
	if displayName == "" {
		displayName = username
	}

	password, err := promptLine("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptLine("Confirm password: ")
	if err != nil {
		return err
	}

	user, err := app.Auth.Register(cmd.Context(), username, displayName, password, confirm)
	if err != nil {
		return err
	}

	// registration does not start a session by itself; record it here
	app.Prefs.SaveUserID(user.ID)
	fmt.Printf("Registered %s (#%d)\n", user.Username, user.ID)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := promptLine("Password: ")
	if err != nil {
		return err
	}

	user, err := app.Auth.Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	app.Prefs.SaveUserID(user.ID)
	fmt.Printf("Hello, %s\n", user.DisplayName)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	userID, err := app.currentUserID()
	if err != nil {
		return err
	}

	user, err := app.Auth.UserByID(cmd.Context(), userID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (#%d) language=%s\n", user.Username, user.ID, app.Prefs.Language())
	return nil
}

func runLang(cmd *cobra.Command, args []string) error {
	code := strings.ToLower(args[0])
	if code != "en" && code != "zh" {
		return fmt.Errorf("unsupported language %q (expected en or zh)", args[0])
	}

	app.Prefs.SaveLanguage(code)
	fmt.Printf("Language set to %s\n", code)
	return nil
}

// stdin is shared so one prompt's read buffer cannot swallow the next line.
var stdin = bufio.NewReader(os.Stdin)

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

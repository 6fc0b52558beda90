package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/raphaelgruber/estatehub/internal/service"
	"github.com/spf13/cobra"
)

var (
	loginPassword    string
	registerName     string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in",
	Long: `Sign in with an email address. Every account accepts the demo password
(ESTATEHUB_DEMO_PASSWORD, "password" by default).

Examples:
  estatehub login jane@example.com
  estatehub login john@example.com --password password`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Long: `Create a new account with role "user" and sign in.

Examples:
  estatehub register alex@example.com --name "Alex Kim"`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", service.DefaultDemoPassword, "password")

	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "display name (required)")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", service.DefaultDemoPassword, "password")
	_ = registerCmd.MarkFlagRequired("name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	var user *models.User
	err := withProgress(cmd.Context(), "Signing in", svc.Latency().Delay(metrics.OpAuthenticate), func(ctx context.Context) error {
		var err error
		user, err = svc.Authenticate(ctx, args[0], loginPassword)
		return err
	})
	if errors.Is(err, service.ErrInvalidCredentials) {
		return fmt.Errorf("invalid email or password")
	}
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	appState.SetSession(user)
	printSignedIn(cmd, "Signed in")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	var user *models.User
	err := withProgress(cmd.Context(), "Creating account", svc.Latency().Delay(metrics.OpRegister), func(ctx context.Context) error {
		var err error
		user, err = svc.Register(ctx, registerName, args[0], registerPassword)
		return err
	})
	if errors.Is(err, service.ErrEmailInUse) {
		return fmt.Errorf("email %s is already in use", args[0])
	}
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	appState.SetSession(user)
	printSignedIn(cmd, "Account created")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := svc.EndSession(cmd.Context()); err != nil {
		return err
	}
	appState.Logout()

	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user := appState.Session()
	if user == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(w, "ID:   %s\n", user.ID)
	fmt.Fprintf(w, "Role: %s\n", user.Role)
	if verbose && user.Avatar != nil {
		fmt.Fprintf(w, "Avatar: %s\n", *user.Avatar)
	}
	return nil
}

// printSignedIn renders from the state store, not from the call result.
func printSignedIn(cmd *cobra.Command, action string) {
	user := appState.Session()
	if user == nil {
		return
	}
	msg := fmt.Sprintf("✓ %s as %s (%s)", action, user.Name, user.Role)
	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render(msg))
}

package cli

import (
	"errors"
	"fmt"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/client"
	"github.com/existflow/irontodo/internal/config"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/model"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long: `Manage the local account whose list the other commands use.
Without a login, tasks go to the shared guest list.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and switch to your list",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:     "signup [username]",
	Aliases: []string{"register"},
	Short:   "Create a new account and log in",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and return to the guest list",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE:  runWhoami,
}

var authPassword string

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
	signupCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
}

// credentials takes the username from args or a prompt and the password from --password or a prompt
func credentials(cmd *cobra.Command, args []string, confirmPassword bool) (string, string, error) {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()

	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		username = prompt(in, out, "Username: ")
	}

	if cmd.Flags().Changed("password") {
		return username, authPassword, nil
	}

	password, err := readPassword(in, out, "Password: ")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if confirmPassword {
		again, err := readPassword(in, out, "Confirm Password: ")
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		if password != again {
			return "", "", errors.New("passwords do not match")
		}
	}
	return username, password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, password, err := credentials(cmd, args, false)
	if err != nil {
		return err
	}
	if cfg := currentConfig(); cfg.ServerURL != "" {
		return startRemoteSession(cmd, cfg, func(c *client.Client) (model.Session, error) {
			return c.Login(cmd.Context(), username, password)
		}, "✅ Logged in as %s\n")
	}
	return startSession(cmd, func(a *app) (model.Session, error) {
		return a.auth.Login(cmd.Context(), username, password)
	}, "✅ Logged in as %s\n")
}

func runSignup(cmd *cobra.Command, args []string) error {
	username, password, err := credentials(cmd, args, true)
	if err != nil {
		return err
	}
	if cfg := currentConfig(); cfg.ServerURL != "" {
		return startRemoteSession(cmd, cfg, func(c *client.Client) (model.Session, error) {
			return c.Signup(cmd.Context(), username, password)
		}, "✅ Account created, logged in as %s\n")
	}
	return startSession(cmd, func(a *app) (model.Session, error) {
		return a.auth.Signup(cmd.Context(), username, password)
	}, "✅ Account created, logged in as %s\n")
}

// startSession runs an auth call and saves the resulting session markers
func startSession(cmd *cobra.Command, fn func(a *app) (model.Session, error), format string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	sess, err := fn(a)
	if err != nil {
		logger.Warn("Authentication failed", logger.F("error", err))
		return err
	}
	if err := a.sessions.Save(cmd.Context(), sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("Session started", logger.F("username", sess.Username))
	fmt.Fprintf(cmd.OutOrStdout(), format, sess.Username)
	return nil
}

// startRemoteSession runs an auth call against the server and keeps the token in the config
func startRemoteSession(cmd *cobra.Command, cfg *config.Config, fn func(c *client.Client) (model.Session, error), format string) error {
	sess, err := fn(client.New(cfg.ServerURL))
	if err != nil {
		logger.Warn("Authentication failed", logger.F("server", cfg.ServerURL), logger.F("error", err))
		return err
	}

	cfg.SetRemoteSession(sess)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("Remote session started", logger.F("server", cfg.ServerURL), logger.F("username", sess.Username))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, format, sess.Username)
	fmt.Fprintf(out, "   Server: %s\n", cfg.ServerURL)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if cfg := currentConfig(); cfg.ServerURL != "" {
		return remoteLogout(cmd, cfg)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	out := cmd.OutOrStdout()
	if a.session.Username == "" {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	if err := a.sessions.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	logger.Info("Session ended", logger.F("username", a.session.Username))
	fmt.Fprintln(out, "✅ Logged out successfully.")
	return nil
}

func remoteLogout(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	if cfg.RemoteToken == "" {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	username := cfg.RemoteUser
	cfg.SetRemoteSession(model.Session{})
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	logger.Info("Remote session ended", logger.F("server", cfg.ServerURL), logger.F("username", username))
	fmt.Fprintln(out, "✅ Logged out successfully.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if cfg := currentConfig(); cfg.ServerURL != "" {
		return remoteWhoami(cmd, cfg)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	out := cmd.OutOrStdout()
	if a.session.Username == "" {
		fmt.Fprintln(out, auth.ErrNotLoggedIn.Error()+" (using guest list)")
		return nil
	}
	fmt.Fprintln(out, a.session.Username)
	return nil
}

// remoteWhoami asks the server who the saved token belongs to
func remoteWhoami(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	l, err := openRemote(cfg)
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Fprintln(out, err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	u, err := l.client.Me(cmd.Context())
	if err != nil {
		return remoteError(err)
	}
	fmt.Fprintf(out, "%s (%s)\n", u.Username, cfg.ServerURL)
	return nil
}

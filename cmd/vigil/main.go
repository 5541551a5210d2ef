package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/app"
	"github.com/vigilops/vigil/internal/config"
	"github.com/vigilops/vigil/internal/logger"
	"github.com/vigilops/vigil/internal/rules"
	"github.com/vigilops/vigil/internal/session"
	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/highlight"
	"github.com/vigilops/vigil/internal/ui/styles"
)

// Version info (set by ldflags)
var version = "dev"

var logLevel string

func main() {
	rootCmd := &cobra.Command{
		Use:   "vigil",
		Short: "Fleet alert operator console",
		Long: `vigil is a terminal console for the fleet monitoring alert service.

Without a subcommand it launches the interactive console: the live alert
feed, severity counters, the top-offender leaderboard, per-alert
drill-down with resolve, the rule engine configuration, and an alert
ingest form.

Configuration lives at ~/.config/vigil/config.yaml and can be overridden
with VIGIL_* environment variables.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRulesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, initializes logging, and builds the API client over
// the persisted session.
func setup() (*config.Config, *api.Client, *session.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger.Init(logger.ParseLevel(level), cfg.Log.Path)

	sess := session.Load(session.DefaultPath())
	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, sess)
	return cfg, client, sess, nil
}

func runConsole() error {
	cfg, client, sess, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	highlight.SetStyle(styles.ChromaStyle(cfg.UI.Theme))

	model := app.New(cfg, client, sess)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Global logout: any 401 clears the credential, and every view must
	// drop to the login screen no matter which request hit it.
	sess.Subscribe(func() {
		p.Send(ui.SessionExpiredMsg{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}

// newLoginCmd authenticates from the terminal without starting the TUI.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate and store the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, sess, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				fmt.Print("Username: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if username == "" {
				return fmt.Errorf("username is required")
			}

			fmt.Print("Password: ")
			pw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			if err := client.Login(context.Background(), username, string(pw)); err != nil {
				if api.IsAuthorization(err) {
					color.Red("Login failed: %v", err)
				} else {
					color.Red("Login failed: %s", app.FormatConnectionError(err, cfg.Server.BaseURL))
				}
				os.Exit(1)
			}
			color.Green("Logged in as %s", username)
			if claims, ok := sess.Claims(); ok && !claims.ExpiresAt.IsZero() {
				fmt.Printf("Token expires %s\n", claims.ExpiresAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// newLogoutCmd discards the stored session token.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := session.Load(session.DefaultPath())
			if !sess.Authenticated() {
				fmt.Println("Not logged in.")
				return nil
			}
			sess.Clear()
			color.Green("Logged out.")
			return nil
		},
	}
}

// newRulesCmd prints the active rule configuration without starting the TUI.
func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule engine configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, _, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			viewer := rules.New(client)
			if err := viewer.Load(context.Background()); err != nil {
				return fmt.Errorf("fetching rules: %s", app.FormatConnectionError(err, cfg.Server.BaseURL))
			}
			ruleSet := viewer.Rules()
			for _, src := range viewer.SourceTypes() {
				color.New(color.Bold).Println(api.DescribeSource(src))
				fmt.Printf("  %s\n", rules.DescribeRule(ruleSet[src]))
			}
			return nil
		},
	}
}

// Package cli provides the adminctl command line client.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/simp-lee/logger"
	"github.com/spf13/cobra"

	"github.com/simp-lee/backoffice/internal/client"
	"github.com/simp-lee/backoffice/internal/config"
)

// Version is set at build time.
var Version = "dev"

type configKey struct{}

type session struct {
	cfg *config.ClientConfig
	log *logger.Logger
}

// NewRootCmd creates the adminctl root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	var sess *session

	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Command line client for the backoffice API",
		Long: `adminctl lists, browses and deletes backoffice records through the HTTP API.

Settings are read from adminctl.yaml (or --config), ADMINCTL_* environment
variables and flags, in increasing order of precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadClient(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			log, err := config.SetupConsoleLogger(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to setup logger: %w", err)
			}

			sess = &session{cfg: cfg, log: log}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, sess))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if sess == nil {
				return nil
			}
			return sess.log.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultClientConfigFile+")")
	flags.String("server", "", "API base URL, e.g. http://localhost:8080")
	flags.String("token", "", "bearer token sent with every request")
	flags.String("timeout", "", "request timeout, e.g. 10s")
	flags.Int("per-page", 0, "rows per page")
	flags.String("search-debounce", "", "quiet period before a search is sent (browse)")
	flags.String("log-file", "", "write logs to this file")
	flags.String("log-level", "", "log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newCollectionsCommand())
	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newBrowseCommand())

	return rootCmd
}

// Execute runs the root command and reports a failure on stderr.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func getSession(ctx context.Context) (*session, error) {
	if s, ok := ctx.Value(configKey{}).(*session); ok {
		return s, nil
	}
	return nil, fmt.Errorf("client configuration is not loaded")
}

// newClient builds an API client from the loaded configuration.
func newClient(ctx context.Context) (*client.Client, *session, error) {
	sess, err := getSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(sess.cfg.Server,
		client.WithToken(sess.cfg.Token),
		client.WithTimeout(sess.cfg.TimeoutDuration()),
	)
	if err != nil {
		return nil, nil, err
	}
	return c, sess, nil
}

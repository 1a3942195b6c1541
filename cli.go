package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cmdapi/api"
	"cmdapi/config"
	"cmdapi/db"
	"cmdapi/handler"
	"cmdapi/logging"
	"cmdapi/model"
	"cmdapi/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "cmdapi",
	Short:         "Keep and run how-to command lines",
	Long:          "cmdapi stores how-to records (what, where, the command line) and serves them over a TUI or a JSON API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal; keep logs out of it.
		return withHandler(io.Discard, func(_ *config.Config, h *handler.Handler) error {
			app, err := ui.NewApp(h)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
			return err
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the commands API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHandler(os.Stderr, func(cfg *config.Config, h *handler.Handler) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.New(h, slog.Default()).ListenAndServe(ctx, cfg.Server.Addr)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHandler(os.Stderr, func(_ *config.Config, h *handler.Handler) error {
			res := h.ListCommands()
			if res.Status != handler.StatusOK {
				return res.Err
			}
			out := cmd.OutOrStdout()
			for _, c := range res.Commands {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", c.ID, c.Platform, c.HowTo, c.CommandLine)
			}
			return nil
		})
	},
}

var addPlatform string

var addCmd = &cobra.Command{
	Use:   "add <how-to> <command-line>",
	Short: "Store a new command",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHandler(os.Stderr, func(_ *config.Config, h *handler.Handler) error {
			res := h.CreateCommand(model.Command{
				HowTo:       args[0],
				Platform:    addPlatform,
				CommandLine: args[1],
			})
			if res.Status != handler.StatusCreated {
				return res.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", res.Command.ID)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all commands as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHandler(os.Stderr, func(_ *config.Config, h *handler.Handler) error {
			res := h.ListCommands()
			if res.Status != handler.StatusOK {
				return res.Err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(res.Commands)
		})
	},
}

// withHandler loads config, sets up logging to logOut, opens the store and
// hands a ready handler to fn. The store is closed when fn returns.
func withHandler(logOut io.Writer, fn func(*config.Config, *handler.Handler) error) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger := logging.Init(logOut, cfg.Log.Level, cfg.Log.Format)

	store, err := db.OpenDriver(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logger.Debug("store opened", "driver", cfg.Store.Driver, "path", cfg.Store.Path)

	return fn(cfg, handler.New(store, logger))
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	addCmd.Flags().StringVarP(&addPlatform, "platform", "p", "", "platform the command runs on")

	rootCmd.AddCommand(serveCmd, listCmd, addCmd, exportCmd)
}

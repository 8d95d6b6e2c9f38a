package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/bookcart/internal/config"
	"github.com/Skotchmaster/bookcart/internal/logging"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand shares.
type cli struct {
	out io.Writer
	log *slog.Logger
	cfg *config.Config
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out}
	var logLevel string

	root := &cobra.Command{
		Use:           "bookcart",
		Short:         "Book marketplace cart",
		Long:          "bookcart keeps a reader's cart of books between runs and turns it into orders at checkout.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			c.cfg = cfg
			c.log = logging.NewWithWriter(errOut, cfg.LogLevel)
			slog.SetDefault(c.log)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error), overrides LOG_LEVEL")

	root.AddCommand(
		c.serveCmd(),
		c.addCmd(),
		c.listCmd(),
		c.updateCmd(),
		c.removeCmd(),
		c.clearCmd(),
		c.checkoutCmd(),
		c.ordersCmd(),
	)
	return root
}

// withApp builds the app for one command and tears it down afterwards.
func (c *cli) withApp(cmd *cobra.Command, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, c.cfg, c.log, opts)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			c.log.Error("close_error", "error", err)
		}
	}()
	return fn(ctx, a)
}

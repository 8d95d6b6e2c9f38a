package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/httpserver"
	"github.com/Skotchmaster/bookcart/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/bookcart/internal/middleware/logging"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart to a local storefront over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = fmt.Sprintf("127.0.0.1:%d", c.cfg.ServerPort)
			}
			return c.withApp(cmd, appOptions{withCheckout: true}, func(ctx context.Context, a *app) error {
				return c.serve(ctx, a, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default 127.0.0.1:$SERVER_PORT)")
	return cmd
}

func newEcho(a *app) (*echo.Echo, error) {
	cartHandler, err := httpserver.NewCartHTTP(a.store, a.cfg.Pricing)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(a.log, a.store.Key()))
	e.Use(middleware.CORS())
	e.Use(csrf.Middleware(csrf.Config{SkipPaths: []string{"/health/live", "/health/ready"}}))

	deps := &httpserver.Deps{CartHandler: cartHandler}
	if a.checkout != nil {
		if deps.CheckoutHandler, err = httpserver.NewCheckoutHTTP(a.checkout); err != nil {
			return nil, err
		}
	}
	httpserver.Register(e, deps)
	return e, nil
}

func (c *cli) serve(ctx context.Context, a *app, addr string) error {
	e, err := newEcho(a)
	if err != nil {
		return err
	}

	unsubscribe := a.store.Subscribe(func(s cart.Snapshot) {
		a.log.Debug("cart changed", "lines", len(s.Items), "total_items", s.TotalItems, "total_price", s.TotalPrice)
	})
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting cart server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("echo start: %w", err)
		}
		return nil
	case <-stop:
	case <-ctx.Done():
	}
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server_shutdown_error", "error", err)
	}
	a.log.Info("shutdown complete")
	return nil
}

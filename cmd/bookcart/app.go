package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/config"
	"github.com/Skotchmaster/bookcart/internal/db"
	"github.com/Skotchmaster/bookcart/internal/notify"
	"github.com/Skotchmaster/bookcart/internal/repo"
	"github.com/Skotchmaster/bookcart/internal/service"
	"github.com/Skotchmaster/bookcart/internal/session"
	"github.com/Skotchmaster/bookcart/internal/storage"
)

// app holds everything a command needs. It is built once per invocation and
// passed down explicitly.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *gorm.DB
	store    *cart.Store
	notifier cart.Notifier
	checkout *service.CheckoutService

	closers []func(context.Context) error
}

type appOptions struct {
	withCheckout bool
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, opts appOptions) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	st, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a.notifier = a.openNotifier()

	a.store, err = cart.New(ctx, cart.Config{
		Storage:  st,
		Notifier: a.notifier,
		Logger:   log,
		Key:      cfg.CartKey,
	})
	if err != nil {
		return nil, err
	}

	if opts.withCheckout {
		if err := a.openCheckout(ctx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openStorage(ctx context.Context) (cart.Storage, error) {
	switch a.cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageFile:
		return storage.NewFile(a.cfg.CartFileDir)
	case config.StorageSQLite, config.StoragePostgres:
		gdb, err := a.database(ctx)
		if err != nil {
			return nil, err
		}
		return &storage.Gorm{DB: gdb}, nil
	}
	return nil, fmt.Errorf("unknown storage %q", a.cfg.Storage)
}

// database opens the order database once: postgres when DATABASE_URL is set,
// the local sqlite file otherwise.
func (a *app) database(ctx context.Context) (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	var (
		gdb *gorm.DB
		err error
	)
	if a.cfg.Storage == config.StoragePostgres || a.cfg.DatabaseURL != "" {
		gdb, err = db.OpenPostgres(ctx, a.cfg.DatabaseURL)
	} else {
		gdb, err = db.OpenSQLite(ctx, a.cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	a.db = gdb
	a.closers = append(a.closers, func(context.Context) error { return db.Close(gdb) })
	return gdb, nil
}

func (a *app) openNotifier() cart.Notifier {
	sinks := notify.Multi{notify.Log{L: a.log}}

	if len(a.cfg.KafkaBrokers) > 0 {
		k, err := notify.NewKafka(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.cfg.ServiceName)
		if err != nil {
			a.log.Warn("kafka_init_error", "error", err)
		} else {
			async := notify.NewAsync(k, 0, a.log)
			sinks = append(sinks, async)
			a.closers = append(a.closers, async.Close, func(context.Context) error { return k.Close() })
		}
	}

	if a.cfg.RabbitURL != "" {
		r, err := notify.NewRabbit(a.cfg.RabbitURL, a.cfg.RabbitExchange, a.cfg.ServiceName)
		if err != nil {
			a.log.Warn("rabbit_init_error", "error", err)
		} else {
			async := notify.NewAsync(r, 0, a.log)
			sinks = append(sinks, async)
			a.closers = append(a.closers, async.Close, func(context.Context) error { return r.Close() })
		}
	}
	return sinks
}

func (a *app) openCheckout(ctx context.Context) error {
	gdb, err := a.database(ctx)
	if err != nil {
		return err
	}
	svc, err := service.NewCheckoutService(
		a.store,
		&repo.GormRepo{DB: gdb},
		&session.JWT{Secret: a.cfg.JWTSecret, Token: a.cfg.AccessToken},
		a.notifier,
		a.cfg.Pricing,
	)
	if err != nil {
		return err
	}
	a.checkout = svc
	return nil
}

// Close runs closers in order: async queues drain before their brokers close.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

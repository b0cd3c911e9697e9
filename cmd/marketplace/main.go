package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-marketplace/config"
	"github.com/goliatone/go-marketplace/logging"
	"github.com/goliatone/go-print"
	"github.com/thejerf/suture/v4"
)

func main() {
	if err := run(os.Args[1:], os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "marketplace: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, lookup func(string) (string, bool)) error {
	cfg, err := config.Load(args, lookup)
	if err != nil {
		return err
	}

	lgr, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer lgr.Sync()

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg.Redacted()))
	fmt.Println("============")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	supervisor := suture.New("marketplace", suture.Spec{
		EventHook: func(e suture.Event) {
			lgr.Named("supervisor").Warn(e.String())
		},
	})
	supervisor.Add(NewHTTPService(app.HTTP, cfg.Address, lgr.Named("http")))

	lgr.Info("marketplace starting", "address", cfg.Address, "driver", cfg.DatabaseDriver)

	if err := supervisor.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	lgr.Info("marketplace stopped")
	return nil
}

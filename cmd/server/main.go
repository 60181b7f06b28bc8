package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/securities-trading/internal/admission"
	"github.com/rxtech-lab/securities-trading/internal/api"
	"github.com/rxtech-lab/securities-trading/internal/cache"
	"github.com/rxtech-lab/securities-trading/internal/config"
	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/quote"
	"github.com/rxtech-lab/securities-trading/internal/store"
	"github.com/rxtech-lab/securities-trading/internal/types"
)

func main() {
	cmd := &cli.Command{
		Name:  "trading-server",
		Usage: "Order admission and quote service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config.yaml",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.New(db, log)
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	source := quote.NewTwseSource(cfg.Feed.BaseURL, cfg.Feed.Exchange, log)
	fetcher := quote.NewFetcher(source, cfg.Feed.MaxRetries, cfg.Feed.RetryDelayUnit, log)
	quoteService := quote.NewService(fetcher, cache.New[types.Quote](cfg.Feed.QuoteTTL), st, log)

	admissionService := admission.NewService(st, cfg.Feed.StockTTL, log)

	server := api.NewServer(cfg.Server.Addr, admissionService, quoteService, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

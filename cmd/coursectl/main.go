package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/go-course-portal/api"
	"github.com/jrsteele09/go-course-portal/internal/config"
	"github.com/jrsteele09/go-course-portal/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}
	setupLogger(cfg.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openTokenStore(ctx, cfg)
	if err != nil {
		log.Err(err).Msg("Failed to open token store")
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Err(err).Msg("Failed to close token store")
		}
	}()

	opts := []api.ClientOption{api.WithTimeout(cfg.GetTimeout())}
	if cfg.GetDedupRefresh() {
		opts = append(opts, api.WithRefreshDedup())
	}
	client := api.NewClient(cfg.GetBaseURL(), store, opts...)

	cli := newCommandLine(cfg.GetAppName(), client, session.NewManager(client))
	cli.colour = term.IsTerminal(int(os.Stdout.Fd()))

	if err := cli.run(ctx, args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		return 1
	}
	return 0
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

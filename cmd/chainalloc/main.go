package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vsinha/chainalloc/pkg/application/services/allocation"
	"github.com/vsinha/chainalloc/pkg/infrastructure/config"
	"github.com/vsinha/chainalloc/pkg/infrastructure/events"
	"github.com/vsinha/chainalloc/pkg/infrastructure/logging"
	"github.com/vsinha/chainalloc/pkg/infrastructure/metrics"
	"github.com/vsinha/chainalloc/pkg/interfaces/cli/commands"
	httpapi "github.com/vsinha/chainalloc/pkg/interfaces/http"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "generate" {
		os.Exit(generate(os.Args[2:]))
	}
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so that deferred cleanup completes
// before main exits.
func run(args []string) int {
	flags := pflag.NewFlagSet("chainalloc", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Serve {
		err = serve(ctx, cfg, logger)
	} else {
		err = commands.NewReserveCommand(cfg, logger, os.Stdout).Execute(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func generate(args []string) int {
	var cfg commands.GenerateConfig
	if err := commands.GenerateFlags(&cfg).Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if err := commands.NewGenerateCommand(cfg, os.Stdout).Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	in, err := commands.LoadInputs(ctx, cfg, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	store := events.NewInMemoryEventStore(logger, events.WithRetention(cfg.EventRetention))
	svc := allocation.NewService(in.Network,
		allocation.WithLogger(logger),
		allocation.WithMetrics(recorder),
		allocation.WithEventStore(store),
		allocation.WithMaxDepth(cfg.MaxDepth))

	server := httpapi.NewServer(svc, in.Network, recorder, store, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Listen(cfg.Listen) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down http server")
		return server.Shutdown()
	}
}

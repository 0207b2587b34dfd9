package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vsinha/chainalloc/pkg/application/services/allocation"
	"github.com/vsinha/chainalloc/pkg/infrastructure/config"
	"github.com/vsinha/chainalloc/pkg/infrastructure/events"
	"github.com/vsinha/chainalloc/pkg/interfaces/cli/output"
)

// ReserveCommand runs one chain allocation and renders the result
type ReserveCommand struct {
	config config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewReserveCommand creates a new reserve command with the given configuration
func NewReserveCommand(cfg config.Config, logger *zap.Logger, out io.Writer) *ReserveCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReserveCommand{config: cfg, logger: logger, out: out}
}

// Execute runs the reserve command
func (c *ReserveCommand) Execute(ctx context.Context) error {
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	in, err := LoadInputs(ctx, c.config, c.logger)
	if err != nil {
		return err
	}
	if in.Head == "" {
		return fmt.Errorf("no head location given (use --head)")
	}

	if c.config.Verbose {
		c.printHeader(in)
	}

	store := events.NewInMemoryEventStore(c.logger)
	svc := allocation.NewService(in.Network,
		allocation.WithLogger(c.logger),
		allocation.WithEventStore(store),
		allocation.WithMaxDepth(c.config.MaxDepth))

	report, err := svc.Reserve(ctx, in.Head, in.Requests)
	if err != nil {
		return fmt.Errorf("error running allocation: %w", err)
	}

	if c.config.Demo && c.config.Format == "text" && c.config.OutputDir == "" && !c.config.Verbose {
		for _, e := range report.Ledger.Satisfied {
			fmt.Fprintf(c.out, "%+v\n", e)
		}
		return nil
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Generate(c.out, report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		all, err := store.ReadAllEvents(0)
		if err != nil {
			return fmt.Errorf("error reading events: %w", err)
		}
		fmt.Fprintf(c.out, "📨 Events published: %d\n", len(all))
		fmt.Fprintln(c.out, "🏁 Allocation complete!")
	}
	return nil
}

// printHeader prints the command header information
func (c *ReserveCommand) printHeader(in *Inputs) {
	fmt.Fprintf(c.out, "🚀 Chain Allocation CLI\n")
	fmt.Fprintf(c.out, "Source: %s\n", in.Source)
	fmt.Fprintf(c.out, "Locations: %d\n", in.Network.Size())
	fmt.Fprintf(c.out, "Head: %s\n", in.Head)
	fmt.Fprintf(c.out, "Request lines: %d\n", len(in.Requests))
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

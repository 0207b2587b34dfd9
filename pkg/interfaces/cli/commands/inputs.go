package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/config"
	csvrepo "github.com/vsinha/chainalloc/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/postgres"
	yamlrepo "github.com/vsinha/chainalloc/pkg/infrastructure/repositories/yaml"
)

// Inputs is a loaded network plus the head and requests to allocate
type Inputs struct {
	Source   string
	Network  *memory.Network
	Head     string
	Requests []entities.LineItem
}

// LoadInputs reads the network from whichever source cfg names. An explicit
// head or requests file overrides what the source carries.
func LoadInputs(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Inputs, error) {
	var in *Inputs

	switch {
	case cfg.Demo:
		network, requests, err := memory.BuildSampleNetwork()
		if err != nil {
			return nil, fmt.Errorf("failed to build sample network: %w", err)
		}
		in = &Inputs{Source: "demo", Network: network, Head: memory.SampleHead, Requests: requests}

	case cfg.Scenario != "":
		scenario, err := yamlrepo.LoadScenario(cfg.Scenario)
		if err != nil {
			return nil, fmt.Errorf("error loading scenario: %w", err)
		}
		in = &Inputs{Source: cfg.Scenario, Network: scenario.Network, Head: scenario.Head, Requests: scenario.Requests}

	case cfg.LocationsFile != "":
		network, err := csvrepo.NewLoader().LoadNetwork(cfg.LocationsFile, cfg.InventoryFile)
		if err != nil {
			return nil, fmt.Errorf("error loading locations: %w", err)
		}
		in = &Inputs{Source: cfg.LocationsFile, Network: network}

	case cfg.DatabaseURL != "":
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		network, err := postgres.NewSnapshotLoader(pool, logger).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading snapshot: %w", err)
		}
		in = &Inputs{Source: "postgres", Network: network}

	default:
		return nil, fmt.Errorf("no location source configured")
	}

	if cfg.Head != "" {
		in.Head = cfg.Head
	}
	if cfg.RequestsFile != "" {
		requests, err := csvrepo.NewLoader().LoadRequests(cfg.RequestsFile)
		if err != nil {
			return nil, fmt.Errorf("error loading requests: %w", err)
		}
		in.Requests = requests
	}

	logger.Debug("inputs loaded",
		zap.String("source", in.Source),
		zap.Int("locations", in.Network.Size()),
		zap.String("head", in.Head),
		zap.Int("requests", len(in.Requests)))
	return in, nil
}

package commands

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Locations int     // Number of locations in the chain
	Products  int     // Number of distinct products
	Requests  int     // Number of request lines
	Coverage  float64 // Stock multiplier across the chain (0.5 = half the request, 2.0 = twice)
	Carry     float64 // Probability that a location carries a given product
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Verbose   bool    // Verbose output
}

// GenerateFlags defines the flags of the generate subcommand
func GenerateFlags(cfg *GenerateConfig) *pflag.FlagSet {
	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	flags.IntVar(&cfg.Locations, "locations", 3, "Number of locations in the chain")
	flags.IntVar(&cfg.Products, "products", 10, "Number of distinct products")
	flags.IntVar(&cfg.Requests, "requests", 5, "Number of request lines")
	flags.Float64Var(&cfg.Coverage, "coverage", 1.0, "Stock multiplier across the whole chain")
	flags.Float64Var(&cfg.Carry, "carry", 0.7, "Probability that a location carries a product")
	flags.StringVar(&cfg.OutputDir, "output", "", "Output directory for generated files")
	flags.Int64Var(&cfg.Seed, "seed", 0, "Random seed for reproducible generation")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	return flags
}

// GenerateCommand writes a random fallback chain as locations.csv,
// inventory.csv and requests.csv.
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

type generatedScenario struct {
	locations []string
	stock     [][]int64 // [location][product], -1 when not carried
	requests  []int64   // quantity of each request line
	products  []int     // product index of each request line
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating chain with %d locations, %d products, %d request lines, %.1fx coverage\n",
			cmd.config.Locations,
			cmd.config.Products,
			cmd.config.Requests,
			cmd.config.Coverage,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	scenario := cmd.generate()

	files := []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{"locations.csv", scenario.writeLocations},
		{"inventory.csv", scenario.writeInventory},
		{"requests.csv", scenario.writeRequests},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeCSV(filepath.Join(cmd.config.OutputDir, f.name), f.write); err != nil {
			return fmt.Errorf("failed to generate %s: %w", f.name, err)
		}
		if cmd.config.Verbose {
			fmt.Fprintf(cmd.out, "📦 Wrote %s\n", f.name)
		}
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated, head is %s\n", scenario.locations[len(scenario.locations)-1])
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return errors.New("--output is required")
	case cmd.config.Locations < 1:
		return errors.New("--locations must be at least 1")
	case cmd.config.Products < 1:
		return errors.New("--products must be at least 1")
	case cmd.config.Requests < 0:
		return errors.New("--requests cannot be negative")
	case cmd.config.Coverage < 0:
		return errors.New("--coverage cannot be negative")
	case cmd.config.Carry < 0 || cmd.config.Carry > 1:
		return errors.New("--carry must be between 0 and 1")
	}
	return nil
}

// generate builds a chain where location i falls back to location i-1, so
// the last location is the head. Stock for each requested product is spread
// over the locations that carry it.
func (cmd *GenerateCommand) generate() *generatedScenario {
	s := &generatedScenario{
		locations: make([]string, cmd.config.Locations),
		stock:     make([][]int64, cmd.config.Locations),
	}
	for i := range s.locations {
		s.locations[i] = fmt.Sprintf("WH_%03d", i+1)
		s.stock[i] = make([]int64, cmd.config.Products)
		for p := range s.stock[i] {
			s.stock[i][p] = -1
		}
	}

	demand := make([]int64, cmd.config.Products)
	for i := 0; i < cmd.config.Requests; i++ {
		product := cmd.rand.Intn(cmd.config.Products)
		qty := int64(1 + cmd.rand.Intn(100))
		s.products = append(s.products, product)
		s.requests = append(s.requests, qty)
		demand[product] += qty
	}

	for p := 0; p < cmd.config.Products; p++ {
		var carriers []int
		for loc := range s.locations {
			if cmd.rand.Float64() < cmd.config.Carry {
				carriers = append(carriers, loc)
			}
		}
		if len(carriers) == 0 {
			continue
		}

		total := int64(float64(demand[p]) * cmd.config.Coverage)
		for i, loc := range carriers {
			share := total / int64(len(carriers)-i)
			if i < len(carriers)-1 && share > 0 {
				share = cmd.rand.Int63n(share + 1)
			}
			s.stock[loc][p] = share
			total -= share
		}
	}
	return s
}

func productName(p int) string {
	return fmt.Sprintf("SKU_%04d", p+1)
}

func (s *generatedScenario) writeLocations(w *csv.Writer) error {
	if err := w.Write([]string{"name", "fallback"}); err != nil {
		return err
	}
	for i, name := range s.locations {
		fallback := ""
		if i > 0 {
			fallback = s.locations[i-1]
		}
		if err := w.Write([]string{name, fallback}); err != nil {
			return err
		}
	}
	return nil
}

func (s *generatedScenario) writeInventory(w *csv.Writer) error {
	if err := w.Write([]string{"location", "product", "quantity"}); err != nil {
		return err
	}
	for loc, name := range s.locations {
		for p, qty := range s.stock[loc] {
			if qty < 0 {
				continue
			}
			if err := w.Write([]string{name, productName(p), strconv.FormatInt(qty, 10)}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *generatedScenario) writeRequests(w *csv.Writer) error {
	if err := w.Write([]string{"product", "quantity"}); err != nil {
		return err
	}
	for i, qty := range s.requests {
		if err := w.Write([]string{productName(s.products[i]), strconv.FormatInt(qty, 10)}); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

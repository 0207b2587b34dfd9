package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/chainalloc/pkg/application/dto"
	"github.com/vsinha/chainalloc/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Generate renders the report in the configured format. Results go to w
// unless an output directory is set.
func Generate(w io.Writer, report *dto.AllocationReport, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(w, report, config)
	case "json":
		return generateJSONOutput(w, report, config)
	case "csv":
		return generateCSVOutput(w, report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// WriteText writes the human-readable summary
func WriteText(w io.Writer, report *dto.AllocationReport, verbose bool) {
	fmt.Fprintf(w, "📊 Allocation Results\n")
	fmt.Fprintf(w, "=====================\n\n")

	fmt.Fprintf(w, "Head: %s\n", report.Head)
	fmt.Fprintf(w, "Chain: %s\n", strings.Join(report.Chain, " -> "))
	fmt.Fprintf(w, "Satisfied entries: %d\n", len(report.Ledger.Satisfied))
	fmt.Fprintf(w, "Unsatisfied entries: %d\n", len(report.Ledger.Unsatisfied))
	fmt.Fprintf(w, "Fill rate: %s%%\n", report.FillRate.Shift(2).StringFixed(2))
	if verbose {
		fmt.Fprintf(w, "Run ID: %s\n", report.RunID)
		fmt.Fprintf(w, "Allocation Time: %v\n", report.Elapsed)
	}
	fmt.Fprintln(w)

	if len(report.Ledger.Satisfied) > 0 {
		fmt.Fprintf(w, "📦 Satisfied:\n")
		fmt.Fprintf(w, "%-10s %-15s %-10s\n", "Location", "Product", "Qty")
		fmt.Fprintf(w, "%-10s %-15s %-10s\n", "----------", "---------------", "----------")
		for _, e := range report.Ledger.Satisfied {
			fmt.Fprintf(w, "%-10s %-15s %-10d\n", e.Location, e.Product, e.Quantity)
		}
		fmt.Fprintln(w)
	}

	if len(report.Ledger.Unsatisfied) > 0 {
		fmt.Fprintf(w, "⚠️  Unsatisfied:\n")
		fmt.Fprintf(w, "%-15s %-10s\n", "Product", "Qty")
		fmt.Fprintf(w, "%-15s %-10s\n", "---------------", "----------")
		for _, e := range report.Ledger.Unsatisfied {
			fmt.Fprintf(w, "%-15s %-10d\n", e.Product, e.Quantity)
		}
		fmt.Fprintln(w)
	}

	if verbose && len(report.Summary) > 0 {
		fmt.Fprintf(w, "📋 Per Product:\n")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-12s\n", "Product", "Requested", "Satisfied", "Unsatisfied")
		for _, s := range report.Summary {
			fmt.Fprintf(w, "%-15s %-10d %-10d %-12d\n", s.Product, s.Requested, s.Satisfied, s.Unsatisfied)
		}
		fmt.Fprintln(w)
	}
}

func generateTextOutput(w io.Writer, report *dto.AllocationReport, config Config) error {
	if config.OutputDir == "" {
		WriteText(w, report, config.Verbose)
		return nil
	}

	filename, err := create(config.OutputDir, "allocation_results.txt", func(f io.Writer) error {
		WriteText(f, report, config.Verbose)
		return nil
	})
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 Results saved to: %s\n", filename)
	}
	return nil
}

func generateJSONOutput(w io.Writer, report *dto.AllocationReport, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(w, string(jsonData))
		return nil
	}

	filename, err := create(config.OutputDir, "allocation_results.json", func(f io.Writer) error {
		_, err := f.Write(jsonData)
		return err
	})
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes satisfied.csv and unsatisfied.csv, or a single
// combined table to w when no output directory is set.
func generateCSVOutput(w io.Writer, report *dto.AllocationReport, config Config) error {
	if config.OutputDir == "" {
		return writeLedgerCSV(w, report.Ledger)
	}

	satisfiedFile, err := create(config.OutputDir, "satisfied.csv", func(f io.Writer) error {
		return writeSatisfiedCSV(f, report.Ledger.Satisfied)
	})
	if err != nil {
		return fmt.Errorf("failed to write satisfied CSV: %w", err)
	}

	unsatisfiedFile, err := create(config.OutputDir, "unsatisfied.csv", func(f io.Writer) error {
		return writeUnsatisfiedCSV(f, report.Ledger.Unsatisfied)
	})
	if err != nil {
		return fmt.Errorf("failed to write unsatisfied CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Satisfied: %s\n", satisfiedFile)
		fmt.Fprintf(w, "  Unsatisfied: %s\n", unsatisfiedFile)
	}
	return nil
}

func writeLedgerCSV(w io.Writer, ledger entities.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"status", "location", "product", "quantity"}); err != nil {
		return err
	}
	for _, e := range ledger.Satisfied {
		if err := cw.Write([]string{"satisfied", e.Location, string(e.Product), formatQty(e.Quantity)}); err != nil {
			return err
		}
	}
	for _, e := range ledger.Unsatisfied {
		if err := cw.Write([]string{"unsatisfied", "", string(e.Product), formatQty(e.Quantity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSatisfiedCSV(w io.Writer, entries []entities.SatisfiedEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"location", "product", "quantity"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Location, string(e.Product), formatQty(e.Quantity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeUnsatisfiedCSV(w io.Writer, entries []entities.UnsatisfiedEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product", "quantity"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{string(e.Product), formatQty(e.Quantity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatQty(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}

// create writes one file under dir, creating dir if needed
func create(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, name)
	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", filename, err)
	}
	return filename, nil
}

// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
	"golang.org/x/term"
)

// view bundles every rendering of one result.
type view struct {
	name    string // used in the file status message
	json    any
	header  []string
	rows    [][]string
	table   func(io.Writer) error
	parquet func(io.Writer) error
}

// writeView renders v to w in the configured output format.
func writeView(w io.Writer, cfg *contract.Config, v view) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, v.json)
	case schema.CSVOut:
		return writeCSVWithHeader(w, v.header, func(cw *csv.Writer) error {
			for _, row := range v.rows {
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		})
	case schema.ParquetOut:
		if v.parquet == nil {
			return fmt.Errorf("parquet output is not supported for %s", v.name)
		}
		return v.parquet(w)
	default:
		return v.table(w)
	}
}

// printView renders v to the configured output file, or stdout.
func printView(cfg *contract.Config, v view) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeView(w, cfg, v)
	}, fmt.Sprintf("Wrote %s %s", cfg.Output, v.name))
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// renderTable draws a right-aligned table.
func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// createFormatters creates the value formatter used across output types.
// Commit counts are integers and ignore the precision.
func createFormatters(precision int) func(column string, v float64) string {
	return func(column string, v float64) string {
		if column == schema.ColGitCommits {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// painter returns a sprint function for c, or a plain one without colors.
func painter(cfg *contract.Config, c *color.Color) func(...any) string {
	if cfg.UseColors {
		return c.SprintFunc()
	}
	return fmt.Sprint
}

// absent is the table marker of a missing value.
const absent = "-"

// terminalWidth returns the width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxMessageWidth calculates the maximum width of the commit message
// column in table output.
func GetMaxMessageWidth(cfg *contract.Config) int {
	// Type + Date + Hash + Elapsed with borders/padding
	available := terminalWidth(cfg) - 75
	if available < 15 {
		return 15
	}
	if available > 80 {
		return 80
	}
	return available
}

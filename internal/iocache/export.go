package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/parquet"
)

// ExportHistory writes every recorded run and row to two Parquet files
// named after outputFile.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no merge history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total merge runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total history rows: %d\n", status.TotalRows)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve merge runs: %w", err)
	}
	rows, err := store.GetAllRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve history rows: %w", err)
	}

	runsFile := outputFile + ".merge_runs.parquet"
	if err := parquet.WriteFile(runsFile, parquet.ConvertMergeRunRecords(runs)); err != nil {
		return fmt.Errorf("failed to write merge runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d merge runs to: %s\n", len(runs), runsFile)

	rowsFile := outputFile + ".history_rows.parquet"
	if err := parquet.WriteFile(rowsFile, parquet.ConvertHistoryRowRecords(rows)); err != nil {
		return fmt.Errorf("failed to write history rows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d history rows to: %s\n", len(rows), rowsFile)
	return nil
}

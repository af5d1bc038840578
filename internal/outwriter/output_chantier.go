package outwriter

import (
	"fmt"
	"io"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/parquet"
	"github.com/worktally/worktally/schema"
)

// PrintChantierReport outputs the days spent per project and sub-project.
func PrintChantierReport(totals []schema.ChantierTotal, cfg *contract.Config) error {
	return printView(cfg, chantierView(totals, cfg))
}

// WriteChantierReport writes the days spent per project and sub-project to w.
func WriteChantierReport(w io.Writer, totals []schema.ChantierTotal, cfg *contract.Config) error {
	return writeView(w, cfg, chantierView(totals, cfg))
}

func chantierView(totals []schema.ChantierTotal, cfg *contract.Config) view {
	rows := make([][]string, len(totals))
	var sum float64
	for i, t := range totals {
		rows[i] = []string{t.Project, t.SubProject, fmt.Sprintf("%.*f", cfg.Precision, t.Days)}
		sum += t.Days
	}
	return view{
		name:   "chantier report",
		json:   totals,
		header: []string{"project", "sub_project", "days"},
		rows:   rows,
		table: func(w io.Writer) error {
			total := []string{"Total", "", fmt.Sprintf("%.*f", cfg.Precision, sum)}
			return renderTable(w, []string{"Project", "Sub-project", "Days"}, append(rows, total))
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertChantierTotals(totals))
		},
	}
}

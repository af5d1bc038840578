package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/internal/parquet"
	"github.com/worktally/worktally/schema"
)

// commitsCSVHeader is the column order of commit CSV exports.
var commitsCSVHeader = []string{"type", "date", "message", "hash", "elapsed"}

// PrintCommits outputs extracted commits in the configured format.
func PrintCommits(records []schema.CommitRecord, cfg *contract.Config, duration time.Duration) error {
	return printView(cfg, commitsView(records, cfg, duration))
}

// WriteCommits writes extracted commits to w in the configured format.
func WriteCommits(w io.Writer, records []schema.CommitRecord, cfg *contract.Config, duration time.Duration) error {
	return writeView(w, cfg, commitsView(records, cfg, duration))
}

// WriteCommitsCSV exports records to a CSV file, regardless of the output format.
func WriteCommitsCSV(path string, records []schema.CommitRecord) error {
	return writeWithFile(path, func(w io.Writer) error {
		return writeView(w, &contract.Config{Output: schema.CSVOut}, commitsView(records, &contract.Config{}, 0))
	}, "Wrote CSV commits")
}

func commitsView(records []schema.CommitRecord, cfg *contract.Config, duration time.Duration) view {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{string(r.Kind), r.Date, r.Message, r.Hash, r.ElapsedText}
	}
	return view{
		name:   "commits",
		json:   records,
		header: commitsCSVHeader,
		rows:   rows,
		table: func(w io.Writer) error {
			return writeCommitsTable(w, records, cfg, duration)
		},
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertCommitRecords(records))
		},
	}
}

func writeCommitsTable(w io.Writer, records []schema.CommitRecord, cfg *contract.Config, duration time.Duration) error {
	merge := painter(cfg, contract.MergeColor)
	initial := painter(cfg, contract.InitColor)
	muted := painter(cfg, contract.MutedColor)

	maxWidth := GetMaxMessageWidth(cfg)
	data := make([][]string, 0, len(records))
	for _, r := range records {
		kind := string(r.Kind)
		switch r.Kind {
		case schema.MergeCommit:
			kind = merge(kind)
		case schema.InitCommit:
			kind = initial(kind)
		}
		elapsed := r.ElapsedText
		if r.Elapsed == nil {
			elapsed = muted(elapsed)
		}
		data = append(data, []string{
			kind,
			r.Date,
			contract.TruncateText(r.FirstLine(), maxWidth),
			shortHash(r.Hash),
			elapsed,
		})
	}
	if err := renderTable(w, []string{"Type", "Date", "Message", "Hash", "Elapsed"}, data); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Extracted %d records (%d merges) in %v\n",
		len(records), schema.CountKind(records, schema.MergeCommit), duration)
	return err
}

func shortHash(hash string) string {
	if len(hash) > 10 {
		return hash[:10]
	}
	return hash
}

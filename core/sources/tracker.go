package sources

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/worktally/worktally/core/agg"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

// trackerTimeLayout renders start and stop times.
const trackerTimeLayout = "2006-01-02 15:04:05"

// trackerUnknownTitle names entities without a title.
const trackerUnknownTitle = "unknown"

// trackerExport is the part of a productivity tracker backup worktally reads.
type trackerExport struct {
	Project struct {
		Entities map[string]trackerEntity `json:"entities"`
	} `json:"project"`
}

type trackerEntity struct {
	Title     *string             `json:"title"`
	WorkStart map[string]*float64 `json:"workStart"`
	WorkEnd   map[string]*float64 `json:"workEnd"`
}

// LoadTracker reads a productivity tracker JSON export. Times are rendered in
// loc. Entries under a malformed date key are passed to skip and left out.
func LoadTracker(path string, loc *time.Location, skip SkipFunc) ([]schema.TrackerEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contract.SourceUnreadable(path, err)
	}
	entries, err := ParseTracker(data, loc, func(err error) { skip.report(contract.SourceUnreadable(path, err)) })
	if err != nil {
		return nil, contract.SourceUnreadable(path, err)
	}
	return entries, nil
}

// ParseTracker parses a tracker export. It yields one entry per (date, project),
// ordered by project id then date.
func ParseTracker(data []byte, loc *time.Location, skip SkipFunc) ([]schema.TrackerEntry, error) {
	if loc == nil {
		loc = time.Local
	}
	var export trackerExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("invalid tracker export: %w", err)
	}
	if export.Project.Entities == nil {
		return nil, fmt.Errorf("invalid tracker export: missing project entities")
	}

	ids := slices.Sorted(maps.Keys(export.Project.Entities))
	var entries []schema.TrackerEntry
	for _, id := range ids {
		entity := export.Project.Entities[id]
		title := trackerUnknownTitle
		if entity.Title != nil {
			title = *entity.Title
		}
		dates := slices.Sorted(maps.Keys(entity.WorkStart))
		for _, date := range dates {
			day, err := schema.ParseDay(strings.TrimSpace(date))
			if err != nil {
				skip.report(fmt.Errorf("invalid date %q in project %s: %w", date, id, err))
				continue
			}
			start, end := entity.WorkStart[date], entity.WorkEnd[date]
			entries = append(entries, schema.TrackerEntry{
				Day:       day,
				ProjectID: id,
				Project:   title,
				Start:     formatMillis(start, loc),
				Stop:      formatMillis(end, loc),
				Hours:     deltaHours(start, end),
			})
		}
	}
	return entries, nil
}

// formatMillis renders an epoch milliseconds timestamp, or "undefined" for a
// missing or zero one.
func formatMillis(ms *float64, loc *time.Location) string {
	if ms == nil || *ms == 0 {
		return schema.TrackerUndefined
	}
	return time.UnixMilli(int64(*ms)).In(loc).Format(trackerTimeLayout)
}

// deltaHours returns the hours between two epoch millisecond timestamps,
// rounded to 2 decimals, or nil when either is missing or zero.
func deltaHours(start, end *float64) *float64 {
	if start == nil || end == nil || *start == 0 || *end == 0 {
		return nil
	}
	h := schema.Round((*end-*start)/(1000*60*60), 2)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return nil
	}
	return &h
}

// TrackerHours sums the hours of the project's tracker identifiers per day.
// Entries match on title or id. A day with only missing hours counts as 0.
func TrackerHours(projects contract.Projects, name string, entries []schema.TrackerEntry, policy schema.FillPolicy) (schema.DailySeries, error) {
	cfg, err := projects.Lookup(name)
	if err != nil {
		return schema.DailySeries{}, err
	}
	var obs []agg.Observation
	for _, e := range entries {
		if !slices.Contains(cfg.TrackerProjects, e.Project) && !slices.Contains(cfg.TrackerProjects, e.ProjectID) {
			continue
		}
		o := agg.Observation{Day: e.Day}
		if e.Hours != nil {
			o.Value = *e.Hours
		}
		obs = append(obs, o)
	}
	return agg.SumByDay(schema.ColTrackerHours, obs, policy), nil
}

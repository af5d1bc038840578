package schema

import "time"

// ProjectConfig maps a project to its repositories and external tool identifiers.
type ProjectConfig struct {
	GitDirs         []string `json:"git_dirs" yaml:"git_dirs" mapstructure:"git_dirs"`
	PomodoroProject string   `json:"pomodoro" yaml:"pomodoro" mapstructure:"pomodoro"`
	TrackerProjects []string `json:"tracker" yaml:"tracker" mapstructure:"tracker"`
}

// PomodoroEntry is one row of a Pomodoro timer export.
type PomodoroEntry struct {
	Day         time.Time         `json:"day"`
	Project     string            `json:"project"`
	MainProject string            `json:"main_project"` // first whitespace token of Project
	Minutes     float64           `json:"minutes"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// TrackerEntry is one (date, project) row of a productivity tracker export.
type TrackerEntry struct {
	Day       time.Time `json:"day"`
	ProjectID string    `json:"project_id"`
	Project   string    `json:"project"`
	Start     string    `json:"start"` // "undefined" when missing
	Stop      string    `json:"stop"`
	Hours     *float64  `json:"hours"` // nil when start or end is missing
}

// TrackerUndefined marks a missing start or stop time.
const TrackerUndefined = "undefined"

// ChantierEntry is one line of a construction-site tracking workbook.
type ChantierEntry struct {
	Sheet      string    `json:"sheet"`
	Project    string    `json:"project"`
	SubProject string    `json:"sub_project"`
	Date       time.Time `json:"date"`
	Days       float64   `json:"days"`
}

// ChantierTotal is the number of days spent on a project/sub-project pair.
type ChantierTotal struct {
	Project    string  `json:"project"`
	SubProject string  `json:"sub_project"`
	Days       float64 `json:"days"`
}

package contract

import (
	"fmt"
	"os"
	"slices"

	"github.com/worktally/worktally/schema"
	"gopkg.in/yaml.v3"
)

// Projects is the read-only project configuration passed to every
// project-scoped operation.
type Projects struct {
	names   []string
	configs map[string]schema.ProjectConfig
}

// projectsFile is the layout of a projects file.
type projectsFile struct {
	Projects map[string]schema.ProjectConfig `yaml:"projects"`
}

// NewProjects builds the configuration from a name to project map.
func NewProjects(configs map[string]schema.ProjectConfig) Projects {
	p := Projects{configs: make(map[string]schema.ProjectConfig, len(configs))}
	for name, cfg := range configs {
		p.names = append(p.names, name)
		p.configs[name] = cfg
	}
	slices.Sort(p.names)
	return p
}

// LoadProjectsFile reads a YAML file with a top-level projects mapping.
func LoadProjectsFile(path string) (Projects, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Projects{}, SourceUnreadable(path, err)
	}
	var file projectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Projects{}, SourceUnreadable(path, fmt.Errorf("invalid projects file: %w", err))
	}
	return NewProjects(file.Projects), nil
}

// Names returns the project names in sorted order.
func (p Projects) Names() []string {
	return slices.Clone(p.names)
}

// Len returns the number of configured projects.
func (p Projects) Len() int {
	return len(p.names)
}

// Lookup returns the configuration of a project, or an unknown project error.
func (p Projects) Lookup(name string) (schema.ProjectConfig, error) {
	cfg, ok := p.configs[name]
	if !ok {
		return schema.ProjectConfig{}, UnknownProject(name)
	}
	return cfg, nil
}

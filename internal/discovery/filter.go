package discovery

import (
	"strings"

	"github.com/vvsotnikov/playwright/internal/config"
)

// FilterProjects narrows projects down to the requested names, compared
// case-insensitively. Without names every project is returned. Configuration
// order is preserved. The second result lists requested names that matched
// no project.
func FilterProjects(projects []*config.Project, names []string) ([]*config.Project, []string) {
	if len(names) == 0 {
		out := make([]*config.Project, len(projects))
		copy(out, projects)
		return out, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.ToLower(name)] = true
	}

	var result []*config.Project
	found := make(map[string]bool)
	for _, project := range projects {
		name := strings.ToLower(project.Name)
		if wanted[name] {
			result = append(result, project)
			found[name] = true
		}
	}

	var unknown []string
	for _, name := range names {
		if !found[strings.ToLower(name)] {
			unknown = append(unknown, name)
		}
	}
	return result, unknown
}

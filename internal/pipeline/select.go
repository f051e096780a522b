package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vvsotnikov/playwright/internal/config"
)

// projectClosure returns projects followed by their transitive dependencies
// in depth-first preorder. Every project appears once.
func projectClosure(projects []*config.Project) ([]*config.Project, error) {
	var (
		out     []*config.Project
		seen    = make(map[*config.Project]bool)
		onStack = make(map[*config.Project]bool)
		stack   []string
	)

	var visit func(p *config.Project) error
	visit = func(p *config.Project) error {
		if onStack[p] {
			cycle := append(slices.Clone(stack[slices.Index(stack, p.Name):]), p.Name)
			return fmt.Errorf("%w: %s", config.ErrCircularDependency, strings.Join(cycle, " -> "))
		}
		if seen[p] {
			return nil
		}
		seen[p] = true
		onStack[p] = true
		stack = append(stack, p.Name)
		out = append(out, p)
		for _, dep := range p.Deps() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		onStack[p] = false
		return nil
	}

	for _, p := range projects {
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// dependencyProjects returns every project reachable through dependencies
// of projects, not counting the projects themselves
func dependencyProjects(projects []*config.Project) map[*config.Project]bool {
	deps := make(map[*config.Project]bool)
	var visit func(p *config.Project)
	visit = func(p *config.Project) {
		for _, dep := range p.Deps() {
			if !deps[dep] {
				deps[dep] = true
				visit(dep)
			}
		}
	}
	for _, p := range projects {
		visit(p)
	}
	return deps
}

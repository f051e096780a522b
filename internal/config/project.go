package config

import (
	"path/filepath"
	"slices"
)

// Project scopes a set of test files and the parameters they are assembled with
type Project struct {
	Name          string   `yaml:"name"`
	TestDir       string   `yaml:"testDir"`
	TestMatch     []string `yaml:"testMatch"`
	TestIgnore    []string `yaml:"testIgnore"`
	RepeatEach    int      `yaml:"repeatEach"`
	FullyParallel *bool    `yaml:"fullyParallel"`
	Grep          string   `yaml:"grep"`
	GrepInvert    string   `yaml:"grepInvert"`
	Dependencies  []string `yaml:"dependencies"`

	deps []*Project
}

// Deps returns the resolved direct dependencies in declaration order
func (p *Project) Deps() []*Project {
	return slices.Clone(p.deps)
}

// SetDeps replaces the resolved dependencies. Used when projects are built in code.
func (p *Project) SetDeps(deps ...*Project) {
	p.deps = deps
	p.Dependencies = p.Dependencies[:0]
	for _, d := range deps {
		p.Dependencies = append(p.Dependencies, d.Name)
	}
}

// IsFullyParallel reports whether every test of the project may run in parallel
func (p *Project) IsFullyParallel() bool {
	return p.FullyParallel != nil && *p.FullyParallel
}

// applyDefaults fills unset fields from the top-level config
func (p *Project) applyDefaults(top fileConfig, rootDir string) {
	if p.TestDir == "" {
		p.TestDir = top.TestDir
	}
	if p.TestDir == "" {
		p.TestDir = DefaultTestDir
	}
	if !filepath.IsAbs(p.TestDir) {
		p.TestDir = filepath.Join(rootDir, p.TestDir)
	}
	p.TestDir = filepath.Clean(p.TestDir)
	if len(p.TestMatch) == 0 {
		p.TestMatch = slices.Clone(top.TestMatch)
	}
	if len(p.TestMatch) == 0 {
		p.TestMatch = slices.Clone(DefaultTestMatch)
	}
	if len(p.TestIgnore) == 0 {
		p.TestIgnore = slices.Clone(top.TestIgnore)
	}
	if p.RepeatEach == 0 {
		p.RepeatEach = top.RepeatEach
	}
	if p.RepeatEach == 0 {
		p.RepeatEach = DefaultRepeatEach
	}
	if p.FullyParallel == nil && top.FullyParallel != nil {
		v := *top.FullyParallel
		p.FullyParallel = &v
	}
	if p.Grep == "" {
		p.Grep = top.Grep
	}
	if p.GrepInvert == "" {
		p.GrepInvert = top.GrepInvert
	}
}

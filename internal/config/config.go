package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoaderMode selects how test files are parsed
type LoaderMode string

const (
	// LoaderInProcess parses test files inside the pwt process
	LoaderInProcess LoaderMode = "in-process"
	// LoaderProcess parses test files in isolated worker processes
	LoaderProcess LoaderMode = "process"
)

// Config holds all configuration for an assembly run
type Config struct {
	// File settings
	ConfigFile string
	RootDir    string

	// Assembly settings
	ForbidOnly bool
	Shard      *Shard
	Projects   []*Project

	// Loader settings
	Workers int
	Loader  LoaderMode

	// Module settings
	GlobalSetup    string
	GlobalTeardown string
	Reporters      []string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags

	file fileConfig
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile      string
	Projects        []string
	Grep            string
	GrepInvert      string
	Shard           string
	ForbidOnly      bool
	RepeatEach      int
	Workers         int
	Loader          string
	PassWithNoTests bool
	Output          string
	Reporters       []string
	ListOnly        bool
	Verbose         bool
}

// fileConfig mirrors the YAML configuration file
type fileConfig struct {
	TestDir        string     `yaml:"testDir"`
	TestMatch      []string   `yaml:"testMatch"`
	TestIgnore     []string   `yaml:"testIgnore"`
	RepeatEach     int        `yaml:"repeatEach"`
	FullyParallel  *bool      `yaml:"fullyParallel"`
	Grep           string     `yaml:"grep"`
	GrepInvert     string     `yaml:"grepInvert"`
	ForbidOnly     bool       `yaml:"forbidOnly"`
	Workers        int        `yaml:"workers"`
	Loader         LoaderMode `yaml:"loader"`
	Shard          *Shard     `yaml:"shard"`
	GlobalSetup    string     `yaml:"globalSetup"`
	GlobalTeardown string     `yaml:"globalTeardown"`
	Reporter       []string   `yaml:"reporter"`
	OutputDir      string     `yaml:"outputDir"`
	IgnoreDirs     []string   `yaml:"ignoreDirs"`
	Projects       []*Project `yaml:"projects"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		RootDir:        ".",
		Workers:        DefaultWorkers,
		Loader:         DefaultLoader,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
	}
	if wd, err := os.Getwd(); err == nil {
		cfg.RootDir = wd
	}
	cfg.PathsToIgnore = slices.Clone(DefaultPathsToIgnore)
	cfg.Reporters = slices.Clone(DefaultReporters)
	return cfg
}

// Load reads the configuration file, the .env file next to it, environment
// overrides and finally the command-line flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	path := flags.ConfigFile
	if path == "" {
		candidate := filepath.Join(cfg.RootDir, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// .env might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(cfg.RootDir, DefaultEnvFile))

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(flags); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := c.decode(data); err != nil {
		return fmt.Errorf("parse config file %s: %w", abs, err)
	}
	c.ConfigFile = abs
	c.RootDir = filepath.Dir(abs)
	return nil
}

func (c *Config) decode(data []byte) error {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c.file = fc
	c.ForbidOnly = fc.ForbidOnly
	c.Shard = fc.Shard
	c.GlobalSetup = fc.GlobalSetup
	c.GlobalTeardown = fc.GlobalTeardown
	c.Projects = fc.Projects
	if fc.Workers != 0 {
		c.Workers = fc.Workers
	}
	if fc.Loader != "" {
		c.Loader = fc.Loader
	}
	if len(fc.Reporter) > 0 {
		c.Reporters = slices.Clone(fc.Reporter)
	}
	if fc.OutputDir != "" {
		c.OutputJSONDir = fc.OutputDir
	}
	if len(fc.IgnoreDirs) > 0 {
		c.PathsToIgnore = slices.Clone(fc.IgnoreDirs)
	}
	return nil
}

// applyEnvOverrides lets PWT_* environment variables override the file
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PWT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalidf("PWT_WORKERS=%q is not a number", v)
		}
		c.Workers = n
	}
	if v := os.Getenv("PWT_LOADER"); v != "" {
		c.Loader = LoaderMode(v)
	}
	if v := os.Getenv("PWT_SHARD"); v != "" {
		shard, err := ParseShard(v)
		if err != nil {
			return err
		}
		c.Shard = shard
	}
	if v := os.Getenv("PWT_FORBID_ONLY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalidf("PWT_FORBID_ONLY=%q is not a boolean", v)
		}
		c.ForbidOnly = b
	}
	return nil
}

func (c *Config) applyFlags(flags Flags) error {
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Loader != "" {
		c.Loader = LoaderMode(flags.Loader)
	}
	if flags.Shard != "" {
		shard, err := ParseShard(flags.Shard)
		if err != nil {
			return err
		}
		c.Shard = shard
	}
	if flags.ForbidOnly {
		c.ForbidOnly = true
	}
	if len(flags.Reporters) > 0 {
		c.Reporters = slices.Clone(flags.Reporters)
	}
	if flags.RepeatEach > 0 {
		c.file.RepeatEach = flags.RepeatEach
		for _, p := range c.Projects {
			p.RepeatEach = flags.RepeatEach
		}
	}
	return nil
}

// Resolve applies project defaults, resolves dependencies and validates the
// configuration. It is idempotent.
func (c *Config) Resolve() error {
	if c.Workers < 1 {
		return invalidf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Loader {
	case LoaderInProcess, LoaderProcess:
	default:
		return invalidf("unknown loader %q, expected %q or %q", c.Loader, LoaderInProcess, LoaderProcess)
	}
	if c.Shard != nil {
		if err := c.Shard.Validate(); err != nil {
			return err
		}
	}
	if len(c.Projects) == 0 {
		c.Projects = []*Project{{}}
	}

	byName := make(map[string]*Project, len(c.Projects))
	for _, p := range c.Projects {
		p.applyDefaults(c.file, c.RootDir)
		if p.RepeatEach < 1 {
			return invalidf("project %q: repeatEach must be at least 1, got %d", p.Name, p.RepeatEach)
		}
		if _, dup := byName[p.Name]; dup {
			return invalidf("duplicate project name %q", p.Name)
		}
		byName[p.Name] = p
	}
	for _, p := range c.Projects {
		p.deps = p.deps[:0]
		for _, name := range p.Dependencies {
			dep, ok := byName[name]
			if !ok {
				return invalidf("project %q depends on unknown project %q", p.Name, name)
			}
			p.deps = append(p.deps, dep)
		}
	}
	return checkAcyclic(c.Projects)
}

// checkAcyclic walks the dependency graph and reports one cycle, if any
func checkAcyclic(projects []*Project) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*Project]int, len(projects))
	var stack []string

	var visit func(p *Project) error
	visit = func(p *Project) error {
		color[p] = gray
		stack = append(stack, p.Name)
		for _, dep := range p.deps {
			switch color[dep] {
			case gray:
				start := slices.Index(stack, dep.Name)
				return cycleError(append(slices.Clone(stack[start:]), dep.Name))
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[p] = black
		return nil
	}

	for _, p := range projects {
		if color[p] == white {
			if err := visit(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProjectByName returns the project with the given name, or nil
func (c *Config) ProjectByName(name string) *Project {
	for _, p := range c.Projects {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// ResolvePath makes a path from the configuration absolute against RootDir
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.RootDir, p)
}

// GetOutputPath returns the full path to the listing report file.
// The --output flag wins over the configured directory.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.RootDir, c.OutputJSONDir, c.OutputJSONFile)
	if c.Flags.Output != "" {
		p = c.Flags.Output
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

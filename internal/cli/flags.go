package cli

import "github.com/vvsotnikov/playwright/internal/config"

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
	Verbose         bool
	RootDir         string
	Last            bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:      f.ConfigFile,
		Projects:        f.Projects,
		Grep:            f.Grep,
		GrepInvert:      f.GrepInvert,
		Shard:           f.Shard,
		ForbidOnly:      f.ForbidOnly,
		RepeatEach:      f.RepeatEach,
		Workers:         f.Workers,
		Loader:          f.Loader,
		PassWithNoTests: f.PassWithNoTests,
		Output:          f.Output,
		Reporters:       f.Reporters,
		Verbose:         f.Verbose,
	}
}

package config

const (
	// DefaultConfigFile is the configuration file looked up in the working directory
	DefaultConfigFile = "pwt.yaml"
	// DefaultEnvFile is the dotenv file loaded next to the configuration file
	DefaultEnvFile = ".env"
	// DefaultTestDir is the default project test directory, relative to the root dir
	DefaultTestDir = "."
	// DefaultOutputJSONFile is the default listing report file name
	DefaultOutputJSONFile = "test-list.json"
	// DefaultOutputJSONDir is the default listing report directory
	DefaultOutputJSONDir = ".pwt"
	// DefaultWorkers is the default number of concurrent loaders
	DefaultWorkers = 4
	// DefaultRepeatEach is the default number of repetitions per test
	DefaultRepeatEach = 1
	// DefaultLoader is the default loader strategy
	DefaultLoader = LoaderInProcess
)

// DefaultTestMatch are the globs a file must match to be a test file
var DefaultTestMatch = []string{
	"**/*.{spec,test}.{js,ts,mjs,cjs,jsx,tsx}",
}

// DefaultPathsToIgnore are the directories skipped when scanning for test files
var DefaultPathsToIgnore = []string{
	"node_modules",
}

// DefaultReporters are used when neither the config file nor flags name one
var DefaultReporters = []string{"list"}

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFileName = "cstgen.yaml"
	configEnvKey          = "CSTX_CONFIG"
)

// Config contains settings shared by all commands.
type Config struct {
	Verbose   bool   `yaml:"verbose" envconfig:"CSTX_VERBOSE"`
	NoColor   bool   `yaml:"no_color" envconfig:"CSTX_NO_COLOR"`
	LogFormat string `yaml:"log_format" envconfig:"CSTX_LOG_FORMAT"`

	// Start is the start rule for EBNF grammars and parsers.
	Start string `yaml:"start" envconfig:"CSTX_START"`

	ShapeDepth    int `yaml:"shape_depth" envconfig:"CSTX_SHAPE_DEPTH"`
	ShapeLimit    int `yaml:"shape_limit" envconfig:"CSTX_SHAPE_LIMIT"`
	RecoveryBack  int `yaml:"recovery_back" envconfig:"CSTX_RECOVERY_BACK"`
	RecoveryAhead int `yaml:"recovery_ahead" envconfig:"CSTX_RECOVERY_AHEAD"`

	// Jobs limits the number of files parsed concurrently, non-positive means no limit.
	Jobs int `yaml:"jobs" envconfig:"CSTX_JOBS"`
}

func defaultConfig() Config {
	return Config{
		LogFormat: "text",
		Jobs:      runtime.NumCPU(),
	}
}

// cliConfig keeps values of command line flags until they are consolidated.
type cliConfig struct {
	Config
	configPath string
}

func configFlagSet(cli *cliConfig) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	def := defaultConfig()
	flags.StringVarP(&cli.configPath, "config", "c", "", "YAML config file, default is "+defaultConfigFileName)
	flags.BoolVar(&cli.Verbose, "verbose", false, "enable debug logging")
	flags.BoolVar(&cli.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&cli.LogFormat, "log-format", def.LogFormat, "log output format: text or json")
	flags.StringVar(&cli.Start, "start", "", "start rule name")
	flags.IntVar(&cli.ShapeDepth, "shape-depth", 0, "maximum length of compared token sequences, 0 means default")
	flags.IntVar(&cli.ShapeLimit, "shape-limit", 0, "maximum number of token sequences per rule, 0 means default")
	flags.IntVar(&cli.RecoveryBack, "recovery-back", 0, "maximum number of dropped tokens on error, 0 means default")
	flags.IntVar(&cli.RecoveryAhead, "recovery-ahead", 0, "maximum number of skipped tokens on error, 0 means default")
	flags.IntVarP(&cli.Jobs, "jobs", "j", def.Jobs, "number of files parsed concurrently")
	return flags
}

// consolidateConfig applies config file, environment, and changed flags to defaults, in that order.
func consolidateConfig(fs afero.Fs, lookupEnv func(string) (string, bool), flags *pflag.FlagSet, cli cliConfig) (Config, error) {
	conf := defaultConfig()

	path, explicit := cli.configPath, flags.Changed("config")
	if !explicit {
		path, explicit = lookupEnv(configEnvKey)
	}
	if !explicit {
		path = defaultConfigFileName
	}
	data, e := afero.ReadFile(fs, path)
	switch {
	case e == nil:
		if e = yaml.Unmarshal(data, &conf); e != nil {
			return conf, fmt.Errorf("reading config file %s: %w", path, e)
		}
	case explicit || !errors.Is(e, os.ErrNotExist):
		return conf, fmt.Errorf("reading config file: %w", e)
	}

	if e = envconfig.Process("", &conf, lookupEnv); e != nil {
		return conf, fmt.Errorf("reading environment: %w", e)
	}

	if flags.Changed("verbose") {
		conf.Verbose = cli.Verbose
	}
	if flags.Changed("no-color") {
		conf.NoColor = cli.NoColor
	}
	if flags.Changed("log-format") {
		conf.LogFormat = cli.LogFormat
	}
	if flags.Changed("start") {
		conf.Start = cli.Start
	}
	if flags.Changed("shape-depth") {
		conf.ShapeDepth = cli.ShapeDepth
	}
	if flags.Changed("shape-limit") {
		conf.ShapeLimit = cli.ShapeLimit
	}
	if flags.Changed("recovery-back") {
		conf.RecoveryBack = cli.RecoveryBack
	}
	if flags.Changed("recovery-ahead") {
		conf.RecoveryAhead = cli.RecoveryAhead
	}
	if flags.Changed("jobs") {
		conf.Jobs = cli.Jobs
	}
	return conf, nil
}

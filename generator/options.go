package generator

import (
	"fmt"
	"os"

	env "github.com/caarlos0/env/v11"
	"github.com/goaux/stacktrace/v2"
	"github.com/takumakei/sxplr-gen-go/logging"
	"github.com/takumakei/sxplr-gen-go/naming"
	"github.com/takumakei/sxplr-gen-go/plan"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables read by the command.
const EnvPrefix = "SXPLR_GEN_"

// Options are the settings of a run. They are layered as defaults, config
// file, environment and flags, the later overriding the earlier.
type Options struct {
	Generator  string         `yaml:"generator" env:"GENERATOR"`
	ModelType  string         `yaml:"modelType" env:"MODEL_TYPE"`
	OutputFile string         `yaml:"outputFile" env:"OUTPUT_FILE"`
	Jobs       int            `yaml:"jobs" env:"JOBS"`
	Validate   bool           `yaml:"validate" env:"VALIDATE"`
	Args       []string       `yaml:"args" env:"-"`
	Extras     []plan.Extra   `yaml:"extras" env:"-"`
	Rules      naming.Rules   `yaml:"rules" env:"-"`
	Log        logging.Config `yaml:"log"`
}

// LoadOptions applies the config file at path (if any) and the environment
// on top of defaults.
func LoadOptions(path string, defaults Options) (Options, error) {
	opts := defaults
	if path != "" {
		data, err := stacktrace.Trace2(os.ReadFile(path))
		if err != nil {
			return opts, err
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&opts, env.Options{Prefix: EnvPrefix}); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	if o.Generator == "" {
		return fmt.Errorf("generator is empty")
	}
	if len(o.Args) == 0 {
		return fmt.Errorf("generator arguments are empty")
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}
	return nil
}

func (o *Options) planOptions() plan.Options {
	return plan.Options{
		OutputFile: o.OutputFile,
		Rules:      o.Rules,
		Extras:     o.Extras,
		Jobs:       o.Jobs,
	}
}

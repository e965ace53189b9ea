package generator

import "github.com/takumakei/sxplr-gen-go/plan"

// Config describes the command and its built-in defaults.
type Config struct {
	Use     string
	Short   string
	Long    string
	Version string

	DefaultGenerator  string
	DefaultModelType  string
	DefaultOutputFile string

	// DefaultArgs are the generator argument templates, see Model.
	DefaultArgs []string

	// DefaultExtras run after the discovered schemas.
	DefaultExtras []plan.Extra
}

// DefaultArgs invoke datamodel-codegen for a single schema file.
var DefaultArgs = []string{
	"--input", "{{.Input.Path}}",
	"--input-file-type", "jsonschema",
	"--output-model-type", "{{.ModelType}}",
	"--output", "{{.Output.Path}}",
}

func (c *Config) defaults() Options {
	opts := Options{
		Generator:  c.DefaultGenerator,
		ModelType:  c.DefaultModelType,
		OutputFile: c.DefaultOutputFile,
		Jobs:       1,
		Args:       c.DefaultArgs,
		Extras:     c.DefaultExtras,
	}
	if opts.Generator == "" {
		opts.Generator = "datamodel-codegen"
	}
	if opts.ModelType == "" {
		opts.ModelType = "dataclasses.dataclass"
	}
	if opts.Args == nil {
		opts.Args = DefaultArgs
	}
	if opts.Extras == nil {
		opts.Extras = plan.DefaultExtras
	}
	return opts
}

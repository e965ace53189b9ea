// Package plan maps discovered schema files to generator invocations.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/takumakei/sxplr-gen-go/discover"
	"github.com/takumakei/sxplr-gen-go/logging"
	"github.com/takumakei/sxplr-gen-go/naming"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrDuplicateOutput is returned when two jobs would write the same output.
var ErrDuplicateOutput = errors.New("duplicate output")

// Job is a single generator invocation.
type Job struct {
	Schema string        `yaml:"schema" json:"schema"`
	Rel    string        `yaml:"rel" json:"rel"`
	Name   string        `yaml:"name" json:"name"`
	Bucket naming.Bucket `yaml:"bucket" json:"bucket"`
	Dir    string        `yaml:"dir" json:"dir"`
	Output string        `yaml:"output" json:"output"`
	Extra  bool          `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Extra is an invocation configured in addition to the discovered schemas.
type Extra struct {
	// Schema is relative to the source project root.
	Schema string `yaml:"schema"`

	// Output is relative to the output root.
	Output string `yaml:"output"`
}

// DefaultExtras is the invocation run after the discovered schemas when no
// extras are configured.
var DefaultExtras = []Extra{
	{Schema: filepath.Join("src", "api", "types.json"), Output: filepath.Join("types", "__init__.py")},
}

// Options controls how jobs are laid out.
type Options struct {
	// OutputFile is the name of the file written into each job directory.
	// If empty, the directory itself is passed to the generator.
	OutputFile string

	Rules  naming.Rules
	Extras []Extra

	// Jobs is the number of concurrent generator processes of the run. Two
	// jobs writing the same output are an error only when Jobs > 1; otherwise
	// both run in order and the later one overwrites.
	Jobs int
}

// Plan is the ordered list of jobs of a run.
type Plan struct {
	Source string `yaml:"source" json:"source"`
	Output string `yaml:"output" json:"output"`
	Jobs   []Job  `yaml:"jobs" json:"jobs"`
}

// Build returns the plan for the schemas found under source, writing into
// output. Discovered schemas come first in the given order, extras last.
// Jobs sharing an output are logged, and rejected with ErrDuplicateOutput when
// opts.Jobs > 1.
func Build(source, output string, schemas []discover.Schema, opts Options) (*Plan, error) {
	p := &Plan{Source: source, Output: output}
	seen := map[string]string{}
	add := func(job Job) error {
		if prev, ok := seen[job.Output]; ok {
			if opts.Jobs > 1 {
				return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, job.Schema, job.Output)
			}
			logging.Warn("output written twice, the later schema wins",
				zap.String("output", job.Output),
				zap.String("first", prev),
				zap.String("second", job.Schema))
		}
		seen[job.Output] = job.Schema
		p.Jobs = append(p.Jobs, job)
		return nil
	}
	for _, s := range schemas {
		if err := add(NewJob(s, output, opts)); err != nil {
			return nil, err
		}
	}
	for _, e := range opts.Extras {
		if err := add(ExtraJob(e, source, output, opts)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewJob returns the job of a discovered schema. The output directory is
// output/<dir of Rel>/<canonical name>/<bucket>.
func NewJob(s discover.Schema, output string, opts Options) Job {
	name := opts.rules().Canonical(s.Rel)
	bucket := naming.Classify(s.Rel)
	dir := filepath.Join(output, filepath.Dir(s.Rel), name, string(bucket))
	out := dir
	if opts.OutputFile != "" {
		out = filepath.Join(dir, opts.OutputFile)
	}
	return Job{
		Schema: s.Path,
		Rel:    s.Rel,
		Name:   name,
		Bucket: bucket,
		Dir:    dir,
		Output: out,
	}
}

// ExtraJob returns the job of a configured extra invocation. The name uses
// the same rules as NewJob.
func ExtraJob(e Extra, source, output string, opts Options) Job {
	out := filepath.Join(output, e.Output)
	return Job{
		Schema: filepath.Join(source, e.Schema),
		Rel:    e.Schema,
		Name:   opts.rules().Canonical(e.Schema),
		Bucket: naming.Classify(e.Schema),
		Dir:    filepath.Dir(out),
		Output: out,
		Extra:  true,
	}
}

func (o Options) rules() naming.Rules {
	if o.Rules.Suffixes == nil && o.Rules.Prefixes == nil {
		return naming.DefaultRules
	}
	return o.Rules
}

// Select returns the jobs whose Rel is in rels, keeping the plan order.
func (p *Plan) Select(rels ...string) []Job {
	want := make(map[string]bool, len(rels))
	for _, r := range rels {
		want[r] = true
	}
	var jobs []Job
	for _, j := range p.Jobs {
		if !j.Extra && want[j.Rel] {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// Encode writes the plan in the given format, "yaml" or "json".
func (p *Plan) Encode(w io.Writer, format string) error {
	switch format {
	case "", "yaml":
		ye := yaml.NewEncoder(w)
		ye.SetIndent(2)
		if err := ye.Encode(p); err != nil {
			return err
		}
		return ye.Close()
	case "json":
		buf := new(bytes.Buffer)
		je := json.NewEncoder(buf)
		je.SetEscapeHTML(false)
		je.SetIndent("", "  ")
		if err := je.Encode(p); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("unknown plan format %q", format)
}

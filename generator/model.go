package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/takumakei/sxplr-gen-go/plan"
)

// Model is the value the generator argument templates are executed with.
type Model struct {
	Gen       Gen
	Input     Input
	Output    Output
	ModelType string
}

type Gen struct {
	Name    string
	Version string
}

type Input struct {
	Path string
	Rel  string
}

type Output struct {
	Path   string
	Dir    string
	Name   string
	Bucket string
	Extra  bool
}

func newModel(gen Gen, modelType string, job plan.Job) *Model {
	return &Model{
		Gen: gen,
		Input: Input{
			Path: job.Schema,
			Rel:  job.Rel,
		},
		Output: Output{
			Path:   job.Output,
			Dir:    job.Dir,
			Name:   job.Name,
			Bucket: string(job.Bucket),
			Extra:  job.Extra,
		},
		ModelType: modelType,
	}
}

var funcs = map[string]any{
	"basename": filepath.Base,
	"dirname":  filepath.Dir,
	"abs":      filepath.Abs,

	"jsonify": jsonify,
}

func jsonify(v any) (string, error) {
	buf := new(bytes.Buffer)
	je := json.NewEncoder(buf)
	je.SetEscapeHTML(false)
	je.SetIndent("", "  ")
	err := je.Encode(v)
	return buf.String(), err
}

// argsFunc parses the argument templates once and returns a function
// rendering them for a job. Each template yields exactly one argument.
func argsFunc(gen Gen, modelType string, args []string) (func(plan.Job) ([]string, error), error) {
	tmpls := make([]*template.Template, len(args))
	for i, a := range args {
		t, err := template.New(fmt.Sprintf("arg%d", i)).Funcs(funcs).Option("missingkey=error").Parse(a)
		if err != nil {
			return nil, fmt.Errorf("generator argument %q: %w", a, err)
		}
		tmpls[i] = t
	}
	return func(job plan.Job) ([]string, error) {
		model := newModel(gen, modelType, job)
		out := make([]string, len(tmpls))
		buf := new(bytes.Buffer)
		for i, t := range tmpls {
			buf.Reset()
			if err := t.Execute(buf, model); err != nil {
				return nil, err
			}
			out[i] = buf.String()
		}
		return out, nil
	}, nil
}

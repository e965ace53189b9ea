// Package runner dispatches planned jobs to the external generator.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goaux/iter/bufioscanner"
	"github.com/goaux/stacktrace/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"github.com/takumakei/sxplr-gen-go/execpipe"
	"github.com/takumakei/sxplr-gen-go/logging"
	"github.com/takumakei/sxplr-gen-go/naming"
	"github.com/takumakei/sxplr-gen-go/plan"
	"github.com/takumakei/sxplr-gen-go/schemacheck"
	"go.uber.org/zap"
)

// ErrGeneratorNotFound is returned when the generator executable is not on
// the PATH.
var ErrGeneratorNotFound = errors.New("generator not found")

// JobError is returned when a single job fails.
type JobError struct {
	Job plan.Job
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.Job.Rel, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// DefaultMarker is the first-line comment datamodel-codegen writes into every
// generated file.
const DefaultMarker = "generated by datamodel-codegen"

// markerLines is how many leading lines of an existing output are searched
// for the marker.
const markerLines = 5

// Runner runs jobs one by one, or Jobs at a time.
type Runner struct {
	// Generator is the executable invoked once per job.
	Generator string

	// Args returns the command-line arguments of the generator for a job.
	Args func(plan.Job) ([]string, error)

	// Jobs is the number of concurrent generator processes. Values below 1
	// mean 1.
	Jobs int

	// Validate compiles each schema before running the generator.
	Validate bool

	// Marker is searched in existing outputs; a file without it is reported
	// before being overwritten. Empty disables the check.
	Marker string

	// Fs is used for directories and marker checks. Nil means the OS.
	Fs afero.Fs
}

// CheckGenerator returns ErrGeneratorNotFound if the generator is missing.
func (r *Runner) CheckGenerator() error {
	if err := execpipe.CheckPath(r.Generator); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrGeneratorNotFound, r.Generator, err)
	}
	return nil
}

// Run checks the generator and runs every job. A failed job does not stop
// the others; the failures are joined into the returned error. With Jobs <= 1
// the jobs run in order. Cancelling ctx stops the jobs not yet started.
func (r *Runner) Run(ctx context.Context, jobs []plan.Job) error {
	if err := r.CheckGenerator(); err != nil {
		return err
	}
	start := time.Now()
	var err error
	if r.Jobs <= 1 {
		var errs []error
		for _, job := range jobs {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			if err := r.RunJob(ctx, job); err != nil {
				logging.Error("generate", zap.String("schema", job.Rel), zap.Error(err))
				errs = append(errs, err)
			}
		}
		err = errors.Join(errs...)
	} else {
		p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(r.Jobs)
		for _, job := range jobs {
			p.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				err := r.RunJob(ctx, job)
				if err != nil {
					logging.Error("generate", zap.String("schema", job.Rel), zap.Error(err))
				}
				return err
			})
		}
		err = p.Wait()
	}
	if err != nil {
		return err
	}
	logging.Info("done", zap.Int("jobs", len(jobs)), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// RunJob creates the output directory of the job and invokes the generator.
func (r *Runner) RunJob(ctx context.Context, job plan.Job) error {
	if naming.Ambiguous(job.Rel) {
		logging.Warn("schema name matches both request and response",
			zap.String("schema", job.Rel), zap.String("bucket", string(job.Bucket)))
	}

	if r.Validate {
		if err := schemacheck.Validate(job.Schema); err != nil {
			return &JobError{Job: job, Err: err}
		}
	}

	if err := r.fs().MkdirAll(job.Dir, 0o755); err != nil {
		return &JobError{Job: job, Err: stacktrace.Trace(err)}
	}
	r.checkMarker(job)

	args, err := r.Args(job)
	if err != nil {
		return &JobError{Job: job, Err: err}
	}
	logging.Debug("exec", zap.String("generator", r.Generator), zap.Strings("args", args))

	if err := execpipe.Run(ctx, nil, nil, r.Generator, args...); err != nil {
		return &JobError{Job: job, Err: err}
	}
	logging.Info("generated",
		zap.String("schema", job.Rel),
		zap.String("name", job.Name),
		zap.String("bucket", string(job.Bucket)),
		zap.String("output", job.Output))
	return nil
}

func (r *Runner) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Runner) checkMarker(job plan.Job) {
	if r.Marker == "" {
		return
	}
	ok, err := HasMarker(r.fs(), job.Output, r.Marker)
	if err != nil || ok {
		return
	}
	logging.Warn("overwriting file without generator marker", zap.String("output", job.Output))
}

// HasMarker reports whether one of the first lines of the file contains
// marker. A missing file or a directory counts as marked.
func HasMarker(fs afero.Fs, path, marker string) (bool, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	if fi.IsDir() {
		return true, nil
	}
	f, err := fs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	s := bufioscanner.New(bufio.NewScanner(f))
	n := 0
	for _, line := range s.Text() {
		if strings.Contains(line, marker) {
			return true, nil
		}
		if n++; n >= markerLines {
			break
		}
	}
	return false, nil
}

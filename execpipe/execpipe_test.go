package execpipe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/goaux/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takumakei/sxplr-gen-go/execpipe"
)

func Example() {
	results.Must(execpipe.CheckPath("sh"))

	out := new(bytes.Buffer)
	results.Must(execpipe.Run(context.Background(), out, strings.NewReader("hello world\n"), "cat"))
	fmt.Print(out.String())
	// Output:
	// hello world
}

func TestCheckPath(t *testing.T) {
	assert.NoError(t, execpipe.CheckPath("sh"))
	assert.Error(t, execpipe.CheckPath("sxplr-gen-go-no-such-tool"))
}

func TestRun_ExitError(t *testing.T) {
	err := execpipe.Run(context.Background(), nil, nil, "sh", "-c", "echo bad schema >&2; exit 3")
	require.Error(t, err)

	var ee *execpipe.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "sh", ee.Name)
	assert.Equal(t, "bad schema\n", ee.Stderr)
	assert.Contains(t, ee.Error(), `stderr="bad schema"`)

	var xe *exec.ExitError
	require.True(t, errors.As(err, &xe))
	assert.Equal(t, 3, xe.ExitCode())
}

func TestRun_NotFound(t *testing.T) {
	err := execpipe.Run(context.Background(), nil, nil, "sxplr-gen-go-no-such-tool")
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := execpipe.Run(ctx, nil, nil, "sleep", "10")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSON(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := New(buf, Config{Level: "debug", Format: "json"})
	require.NoError(t, err)

	l.Debug("generated", zap.String("schema", "foo__request.json"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "generated", entry["msg"])
	assert.Equal(t, "foo__request.json", entry["schema"])
}

func TestNew_Console(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := New(buf, Config{})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Warn("overwriting", zap.String("output", "foo/request/__init__.py"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "overwriting")
	assert.Contains(t, out, `"output": "foo/request/__init__.py"`)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(new(bytes.Buffer), Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(new(bytes.Buffer), Config{Format: "xml"})
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := New(buf, Config{Format: "json"})
	require.NoError(t, err)

	prev := L()
	Set(l)
	defer Set(prev)

	Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

// Package testgen provides a stand-in for datamodel-codegen in tests.
package testgen

import (
	"os"
	"path/filepath"
	"testing"
)

// Marker is the first line the fake generator writes.
const Marker = "# generated by datamodel-codegen"

const script = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --input) in="$2"; shift 2 ;;
    --output) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
if [ -n "$FAKEGEN_LOG" ]; then echo "$in" >> "$FAKEGEN_LOG"; fi
if grep -q '"reject"' "$in"; then
  echo "cannot parse $in" >&2
  exit 2
fi
{ echo "` + Marker + `"; cat "$in"; } > "$out"
`

// Write creates the fake generator in a temporary directory and returns its
// path. It reads --input, writes Marker followed by the input to --output,
// and fails for inputs containing the string "reject".
func Write(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakegen")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// Args returns the arguments the fake generator understands.
func Args(input, output string) []string {
	return []string{"--input", input, "--input-file-type", "jsonschema", "--output", output}
}

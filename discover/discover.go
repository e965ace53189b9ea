// Package discover finds the JSON Schema files of a siibra-explorer checkout.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goaux/stacktrace/v2"
	"github.com/spf13/afero"
)

// APIDir is the schema directory relative to the source project root.
var APIDir = filepath.Join("src", "api")

// ErrNoAPIDir is returned when the source project has no schema directory.
var ErrNoAPIDir = errors.New("schema directory not found")

// Schema is a discovered schema file.
type Schema struct {
	// Path is the path of the file, rooted like the root passed to Walk.
	Path string

	// Rel is the path relative to the schema directory.
	Rel string
}

// Walk returns every *.json file under root/src/api sorted by Rel.
func Walk(fs afero.Fs, root string) ([]Schema, error) {
	dir := APIDir
	if root != "" {
		dir = filepath.Join(root, APIDir)
	}
	return WalkDir(fs, dir)
}

// WalkDir returns every *.json file under dir sorted by Rel.
func WalkDir(fs afero.Fs, dir string) ([]Schema, error) {
	fi, err := fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoAPIDir, dir)
		}
		return nil, stacktrace.Trace(err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoAPIDir, dir)
	}

	var list []Schema
	err = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() || !IsSchema(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		list = append(list, Schema{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, stacktrace.Trace(err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Rel < list[j].Rel })
	return list, nil
}

// IsSchema reports whether path names a JSON Schema file.
func IsSchema(path string) bool {
	return filepath.Ext(path) == ".json"
}

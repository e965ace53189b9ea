// Package naming classifies sxplr schema files and derives canonical model
// names from their file names.
package naming

import (
	"path/filepath"
	"strings"
)

// Bucket is the kind of model a schema describes.
type Bucket string

const (
	Request  Bucket = "request"
	Response Bucket = "response"
	Other    Bucket = "other"
)

// Rules holds the affixes stripped from a schema file name.
type Rules struct {
	Suffixes []string `yaml:"suffixes"`
	Prefixes []string `yaml:"prefixes"`
}

// DefaultRules matches the file names exported by siibra-explorer, e.g.
// "sxplr.on.allRegions__fromSxplr__request.json".
var DefaultRules = Rules{
	Suffixes: []string{"__request", "__response", "__fromSxplr", "__toSxplr"},
	Prefixes: []string{"sxplr.", "on."},
}

// Classify returns the bucket of the schema file.
//
// Response takes priority over request: a name containing both substrings is
// a response. Use Ambiguous to detect such names.
func Classify(filename string) Bucket {
	base := filepath.Base(filename)
	switch {
	case strings.Contains(base, string(Response)):
		return Response
	case strings.Contains(base, string(Request)):
		return Request
	}
	return Other
}

// Ambiguous reports whether the file name contains both "request" and
// "response".
func Ambiguous(filename string) bool {
	base := filepath.Base(filename)
	return strings.Contains(base, string(Request)) && strings.Contains(base, string(Response))
}

// Canonical returns the model name of the schema file using DefaultRules.
func Canonical(filename string) string {
	return DefaultRules.Canonical(filename)
}

// Canonical returns the model name of the schema file: the base name without
// its extension, with every known suffix and prefix removed.
func (r Rules) Canonical(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = trimAll(name, r.Suffixes, strings.HasSuffix, strings.TrimSuffix)
	name = trimAll(name, r.Prefixes, strings.HasPrefix, strings.TrimPrefix)
	return name
}

// trimAll removes affixes until none of them match. An affix equal to the whole
// remaining name is kept so that the name never becomes empty.
func trimAll(name string, affixes []string, has func(s, a string) bool, trim func(s, a string) string) string {
	for {
		trimmed := false
		for _, a := range affixes {
			if a != "" && len(name) > len(a) && has(name, a) {
				name = trim(name, a)
				trimmed = true
			}
		}
		if !trimmed {
			return name
		}
	}
}

// Package manifest parses per-tool dependency manifests into normalized
// requirement sets. A manifest is plain text with one dependency token per
// line, #-prefixed comments, and trailing-backslash line continuation.
// Version specifiers and bracketed extras are tolerated but ignored; only
// the bare, lower-cased package identifier is kept.
package manifest

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Set is a normalized set of package identifiers. Keys are lower-cased and
// unique; order is irrelevant.
type Set map[string]struct{}

// NewSet builds a Set from the given names, normalizing each to lower case.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a package identifier, normalized to lower case. Empty names
// are ignored.
func (s Set) Add(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

// Has reports whether the set contains the given identifier.
func (s Set) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int { return len(s) }

// Names returns the identifiers sorted alphabetically.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SubsetOf reports whether every identifier in s is present in other.
// An empty set is a subset of everything.
func (s Set) SubsetOf(other Set) bool {
	for n := range s {
		if _, ok := other[n]; !ok {
			return false
		}
	}
	return true
}

// versionOps are the characters that begin a version specifier. Everything
// from the first occurrence onward is discarded when extracting the name.
const versionOps = "=><!~["

// Parse reads a manifest from r and returns its requirement set.
func Parse(r io.Reader) Set {
	set := make(Set)

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if scanner.Err() != nil {
		// Treat a partially read manifest the same as an unreadable one:
		// callers must not distinguish "no requirements" from "unreadable".
		return make(Set)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// A trailing backslash merges with the following line before the
		// token is extracted.
		for strings.HasSuffix(line, "\\") && i+1 < len(lines) {
			line = strings.TrimSpace(strings.TrimSuffix(line, "\\"))
			i++
			line += " " + lines[i]
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, "\\"))

		if idx := strings.IndexAny(line, versionOps); idx >= 0 {
			line = line[:idx]
		}
		set.Add(line)
	}

	return set
}

// ParseFile parses the manifest at path. A missing or unreadable file yields
// an empty set; that is not an error condition, so no error is returned.
func ParseFile(path string) Set {
	f, err := os.Open(path)
	if err != nil {
		return make(Set)
	}
	defer f.Close()
	return Parse(f)
}

// PathFor returns the manifest path that belongs to a tool script: a sibling
// file with the script's extension replaced by ".requirements.txt".
func PathFor(scriptPath string) string {
	ext := filepath.Ext(scriptPath)
	return strings.TrimSuffix(scriptPath, ext) + ".requirements.txt"
}

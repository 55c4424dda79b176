// Package envcache holds the process-lifetime caches that keep environment
// inspection cheap: one cache maps manifest paths to parsed requirement sets,
// the other maps interpreter paths to their installed-package sets. The cache
// is an explicit value owned by the dispatcher wiring, not ambient package
// state, so tests get full isolation.
package envcache

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/boshu2/jackknife/internal/manifest"
)

// PackageLister lists the packages installed for a given interpreter.
// Implemented by the uv client; tests substitute fakes.
type PackageLister interface {
	ListPackages(python string) (manifest.Set, error)
}

// Cache is the pair of process-wide lookup tables. Safe for concurrent reads;
// writes are serialized, though the runner itself executes tools one at a
// time.
type Cache struct {
	mu           sync.RWMutex
	requirements map[string]manifest.Set
	installed    map[string]manifest.Set

	lister PackageLister
	log    zerolog.Logger
}

// New creates an empty cache backed by the given package lister.
func New(lister PackageLister, log zerolog.Logger) *Cache {
	return &Cache{
		requirements: make(map[string]manifest.Set),
		installed:    make(map[string]manifest.Set),
		lister:       lister,
		log:          log,
	}
}

// Requirements returns the requirement set for a manifest path, parsing the
// file at most once per process run. A missing or unreadable manifest yields
// an empty set.
func (c *Cache) Requirements(manifestPath string) manifest.Set {
	c.mu.RLock()
	set, ok := c.requirements[manifestPath]
	c.mu.RUnlock()
	if ok {
		return set
	}

	set = manifest.ParseFile(manifestPath)

	c.mu.Lock()
	c.requirements[manifestPath] = set
	c.mu.Unlock()

	c.log.Debug().Str("manifest", manifestPath).Int("count", set.Len()).
		Msg("parsed requirements")
	return set
}

// Installed returns the installed-package set for an interpreter path. On a
// cache miss the lister is consulted; a failed listing yields an empty set
// and a warning, never an error, so downstream compatibility checks simply
// treat that environment as incompatible. Failed listings are not cached so
// a transient failure does not poison the rest of the run.
func (c *Cache) Installed(python string) manifest.Set {
	c.mu.RLock()
	set, ok := c.installed[python]
	c.mu.RUnlock()
	if ok {
		return set
	}

	set, err := c.lister.ListPackages(python)
	if err != nil {
		c.log.Warn().Err(err).Str("python", python).
			Msg("failed to list installed packages")
		return make(manifest.Set)
	}

	c.mu.Lock()
	c.installed[python] = set
	c.mu.Unlock()

	return set
}

// Invalidate evicts the installed-package entry for an interpreter path.
// Called after a successful install so the next compatibility check sees the
// new packages.
func (c *Cache) Invalidate(python string) {
	c.mu.Lock()
	delete(c.installed, python)
	c.mu.Unlock()

	c.log.Debug().Str("python", python).Msg("invalidated package cache")
}

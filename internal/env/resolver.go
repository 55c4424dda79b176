package env

import (
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/boshu2/jackknife/internal/envcache"
)

// Resolver finds existing environments whose installed packages satisfy a
// tool's requirements.
type Resolver struct {
	// EnvsDir is the base directory holding all environments.
	EnvsDir string
	// Cache resolves requirement sets and installed-package sets.
	Cache *envcache.Cache
	// Share gates the whole mechanism; when false nothing is ever shared.
	Share bool

	Log zerolog.Logger
}

// FindCompatible scans existing environments (excluding the tool's own) and
// returns the first whose installed packages are a superset of the tool's
// requirement set. Candidates are visited sorted by name so the choice is
// reproducible. Returns false when sharing is disabled, when the tool's
// requirement set is empty (an empty set is never shared; the tool gets a
// dedicated environment instead), or when nothing matches.
func (r *Resolver) FindCompatible(toolName, manifestPath string) (Environment, bool) {
	if !r.Share {
		return Environment{}, false
	}

	required := r.Cache.Requirements(manifestPath)
	if required.Len() == 0 {
		return Environment{}, false
	}

	entries, err := os.ReadDir(r.EnvsDir)
	if err != nil {
		// No envs dir yet means no candidates; anything else degrades the
		// same way rather than failing the run.
		if !os.IsNotExist(err) {
			r.Log.Warn().Err(err).Str("dir", r.EnvsDir).
				Msg("could not scan environments")
		}
		return Environment{}, false
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		if entry.Name() == toolName {
			continue
		}

		candidate := At(r.EnvsDir, entry.Name())
		if !candidate.Exists() {
			continue
		}

		installed := r.Cache.Installed(candidate.Interpreter())
		if required.SubsetOf(installed) {
			r.Log.Info().Str("tool", toolName).Str("environment", candidate.Name).
				Msg("package compatibility found")
			return candidate, true
		}
	}

	return Environment{}, false
}

package env

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"

	"github.com/boshu2/jackknife/internal/envcache"
	"github.com/boshu2/jackknife/internal/manifest"
)

// ErrInterpreterMissing is returned when environment creation reported
// success but left no usable interpreter behind.
var ErrInterpreterMissing = errors.New("environment created but interpreter is missing")

// execCommand is a seam for the Windows junction helper invocation.
var execCommand = exec.Command

// Manager is the subset of the uv client the provisioner needs. Tests
// substitute fakes that materialize interpreter files on disk.
type Manager interface {
	CreateVenv(path string) error
	Install(python, manifestPath string) error
}

// Provisioner ensures a tool's environment exists, preferring in order: the
// environment already on disk, a link to a compatible environment, and
// finally a freshly created one with the tool's dependencies installed.
type Provisioner struct {
	// EnvsDir is the base directory holding all environments.
	EnvsDir string
	// Manager materializes environments and installs dependencies.
	Manager Manager
	// Cache is invalidated after successful installs.
	Cache *envcache.Cache
	// Resolver locates compatible environments for sharing.
	Resolver *Resolver
	// Progress enables a spinner during blocking external waits.
	Progress bool

	Log zerolog.Logger
}

// Ensure returns a usable environment for the tool, provisioning one if
// needed. Once an environment exists with a valid interpreter it is never
// re-provisioned within the same process run. A fatal failure while building
// a primary environment removes the partial directory before the error
// propagates, so a retry starts clean.
func (p *Provisioner) Ensure(toolName, scriptPath string) (Environment, error) {
	e := At(p.EnvsDir, toolName)
	if e.Exists() {
		return e, nil
	}

	manifestPath := manifest.PathFor(scriptPath)

	if target, ok := p.Resolver.FindCompatible(toolName, manifestPath); ok {
		err := p.link(e, target)
		if err == nil {
			p.Log.Info().Str("tool", toolName).Str("target", target.Name).
				Msg("linked to compatible environment")
			return e, nil
		}
		p.Log.Warn().Err(err).Str("tool", toolName).
			Msg("linking failed, creating dedicated environment")
	}

	if err := os.MkdirAll(p.EnvsDir, 0o755); err != nil {
		return Environment{}, fmt.Errorf("creating environments directory: %w", err)
	}

	p.Log.Info().Str("tool", toolName).Str("path", e.Root).Msg("creating environment")
	stop := p.progress(fmt.Sprintf("Creating environment for %s...", toolName))
	err := p.Manager.CreateVenv(e.Root)
	stop()
	if err != nil {
		p.remove(e)
		return Environment{}, fmt.Errorf("creating environment for %q: %w", toolName, err)
	}

	if _, statErr := os.Stat(manifestPath); statErr == nil {
		p.Log.Info().Str("tool", toolName).Str("manifest", manifestPath).
			Msg("installing dependencies")
		stop := p.progress(fmt.Sprintf("Installing dependencies for %s...", toolName))
		err := p.Manager.Install(e.Interpreter(), manifestPath)
		stop()
		if err != nil {
			p.remove(e)
			return Environment{}, fmt.Errorf("installing dependencies for %q: %w", toolName, err)
		}
		p.Cache.Invalidate(e.Interpreter())
	} else {
		p.Log.Debug().Str("tool", toolName).Msg("no requirements manifest")
	}

	if !e.Exists() {
		p.remove(e)
		return Environment{}, fmt.Errorf("environment for %q: %w", toolName, ErrInterpreterMissing)
	}

	return e, nil
}

// link points the tool's environment path at a compatible environment's
// root: a symlink on POSIX, a directory junction via cmd on Windows. Only
// the link is created; the target keeps ownership of the underlying files.
func (p *Provisioner) link(e, target Environment) error {
	if err := os.MkdirAll(p.EnvsDir, 0o755); err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		out, err := execCommand("cmd", "/c", "mklink", "/J", e.Root, target.Root).CombinedOutput()
		if err != nil {
			return fmt.Errorf("mklink /J: %w: %s", err, out)
		}
		return nil
	}
	return os.Symlink(target.Root, e.Root)
}

// remove deletes a partially built primary environment so a later retry does
// not find a half-built directory that looks usable.
func (p *Provisioner) remove(e Environment) {
	if err := os.RemoveAll(e.Root); err != nil {
		p.Log.Warn().Err(err).Str("path", e.Root).
			Msg("could not clean up partial environment")
	}
}

// progress starts a spinner for a blocking external wait and returns its
// stop function. The wait itself has no timeout; the spinner only signals
// liveness.
func (p *Provisioner) progress(msg string) func() {
	if !p.Progress {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

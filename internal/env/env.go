// Package env models the isolated runtime environments jackknife maintains
// for its tools and implements the two decision pieces around them: finding
// an existing compatible environment to share, and provisioning a missing
// one (by linking or by creating and installing from scratch).
package env

import (
	"os"
	"path/filepath"
	"runtime"
)

// Environment is one tool's isolated runtime: a named root directory under
// the envs base directory. It is either a primary environment (a real
// runtime directory) or a linked one (a symlink or junction pointing at
// another tool's primary environment; the link owns no files of its own).
type Environment struct {
	// Name is the tool's logical name; it doubles as the directory name.
	Name string
	// Root is the environment's root directory.
	Root string
}

// At returns the environment for a tool name under the given base directory.
func At(envsDir, name string) Environment {
	return Environment{Name: name, Root: filepath.Join(envsDir, name)}
}

// Interpreter returns the platform-dependent path of the environment's
// interpreter binary.
func (e Environment) Interpreter() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Root, "Scripts", "python.exe")
	}
	return filepath.Join(e.Root, "bin", "python")
}

// Exists reports whether the environment is usable: its interpreter binary
// is present (possibly through a link).
func (e Environment) Exists() bool {
	info, err := os.Stat(e.Interpreter())
	return err == nil && info.Mode().IsRegular()
}

// Linked reports whether the environment root is a link to another
// environment rather than a primary directory.
func (e Environment) Linked() bool {
	info, err := os.Lstat(e.Root)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

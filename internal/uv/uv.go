// Package uv wraps the external uv executable, which jackknife delegates all
// environment-management mechanics to: creating virtual environments,
// installing a manifest's dependencies into an interpreter, and listing the
// packages installed for an interpreter. Each operation is a blocking
// subprocess invocation with no timeout; exit code 0 means success.
package uv

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/boshu2/jackknife/internal/manifest"
)

// ErrNotFound is returned when no uv executable can be located. This is
// fatal for the whole run and is reported once at startup.
var ErrNotFound = errors.New("'uv' command not found")

// Seams for tests, following the injectable-command pattern.
var (
	execCommand = exec.Command
	lookPath    = exec.LookPath
)

// CommandError captures a failed uv invocation together with its combined
// output, so provisioning failures can be reported with the external tool's
// own diagnostics.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("uv command failed: %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Client invokes a resolved uv binary.
type Client struct {
	// Bin is the absolute path to the uv executable.
	Bin string
}

// Find locates the uv executable. An empty command defaults to "uv" on PATH.
func Find(command string) (*Client, error) {
	if command == "" {
		command = "uv"
	}
	bin, err := lookPath(command)
	if err != nil {
		return nil, ErrNotFound
	}
	return &Client{Bin: bin}, nil
}

// run executes uv with the given arguments and returns its combined output.
func (c *Client) run(args ...string) (string, error) {
	cmd := execCommand(c.Bin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.String(), &CommandError{
			Args:   append([]string{c.Bin}, args...),
			Output: buf.String(),
			Err:    err,
		}
	}
	return buf.String(), nil
}

// CreateVenv creates a fresh virtual environment at path. Blocks until uv
// exits; a non-zero exit is fatal for the calling tool invocation.
func (c *Client) CreateVenv(path string) error {
	_, err := c.run("venv", path)
	return err
}

// Install installs the manifest's dependencies into the environment owning
// the given interpreter.
func (c *Client) Install(python, manifestPath string) error {
	_, err := c.run("pip", "install", "--python", python, "-r", manifestPath, "--no-input")
	return err
}

// ListPackages returns the normalized names of packages installed for the
// given interpreter.
func (c *Client) ListPackages(python string) (manifest.Set, error) {
	out, err := c.run("pip", "list", "--python", python, "--no-input")
	if err != nil {
		return nil, err
	}
	return parsePackageList(out), nil
}

// parsePackageList parses `uv pip list` output: a two-line header (column
// names plus separator) followed by `name version` rows.
func parsePackageList(out string) manifest.Set {
	set := make(manifest.Set)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 2 {
		return set
	}
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			set.Add(fields[0])
		}
	}
	return set
}

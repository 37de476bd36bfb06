package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"agentctl/internal/profile"
)

// Launcher runs a tool inside a profile with the directory override and
// marker environment applied.
type Launcher struct {
	Store   *profile.Store
	Version string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher wires a launcher to the process's own streams.
func NewLauncher(store *profile.Store, version string) *Launcher {
	return &Launcher{
		Store:   store,
		Version: version,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run execs the profile's tool with args and returns its exit code. The
// tool inherits our environment plus the profile overrides; extraEnv wins
// on conflicts.
func (l *Launcher) Run(ctx context.Context, p *profile.Profile, args []string, extraEnv map[string]string) (int, error) {
	info := InfoFor(p.Tool)

	cmd := exec.CommandContext(ctx, info.Command, args...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	env := append(os.Environ(),
		info.EnvVar+"="+l.Store.Dir(p.Name),
		EnvProfile+"="+p.Name,
		EnvProfileTool+"="+string(p.Tool),
		EnvVersion+"="+l.Version,
	)
	for k, v := range extraEnv {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("launching %s: %w", info.Command, err)
}

// SetTerminalTitle labels the terminal with the active profile so parallel
// sessions are tellable apart.
func (l *Launcher) SetTerminalTitle(p *profile.Profile) {
	fmt.Fprintf(l.Stdout, "\x1b]0;[agentctl:%s] %s\x07", p.Name, InfoFor(p.Tool).Command)
}

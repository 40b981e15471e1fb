package viewer

//go:generate mockgen -source=viewer.go -destination=../mock/viewer_mock.go -package=mock

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/illarion/cloak/internal/logger"
)

var ErrNoOpener = errors.New("no default application launcher available")

// Viewer opens a file with the user's default application.
type Viewer interface {
	Open(ctx context.Context, path string) error
}

// Launcher is the exec-based Viewer.
type Launcher struct {
	name string
	args []string
	log  *logger.Logger
}

// NewLauncher returns a Launcher for the current OS.
func NewLauncher(log *logger.Logger) *Launcher {
	name, args := CommandFor(runtime.GOOS)
	return &Launcher{name: name, args: args, log: log.Component("viewer")}
}

// NewCommandLauncher returns a Launcher that runs name with args followed by
// the file path.
func NewCommandLauncher(log *logger.Logger, name string, args ...string) *Launcher {
	return &Launcher{name: name, args: args, log: log.Component("viewer")}
}

// CommandFor returns the launcher command and leading arguments for goos.
func CommandFor(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		// empty title argument so a quoted path is not taken as the title
		return "cmd", []string{"/c", "start", ""}
	default:
		return "xdg-open", nil
	}
}

// Open starts the launcher for path and returns once it is running.
func (l *Launcher) Open(ctx context.Context, path string) error {
	bin, err := exec.LookPath(l.name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoOpener, l.name, err)
	}

	args := append(append([]string{}, l.args...), path)
	cmd := exec.CommandContext(ctx, bin, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.name, err)
	}

	l.log.Debug().Str("path", path).Int("pid", cmd.Process.Pid).Msg("viewer started")

	go func() {
		if err := cmd.Wait(); err != nil {
			l.log.Debug().Err(err).Str("path", path).Msg("viewer exited")
		}
	}()
	return nil
}

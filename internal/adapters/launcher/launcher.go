package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/creack/pty"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// ErrToolNotFound is returned when a tool is neither bundled nor on PATH
var ErrToolNotFound = errors.New("tool not found")

// shutdownGrace is how long a tool gets to exit after an interrupt
const shutdownGrace = 5 * time.Second

// LauncherAdapter runs the bundled third-party programs in the foreground
type LauncherAdapter struct {
	log      *slog.Logger
	toolsDir string
	usePTY   bool
	goos     string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// NewLauncherAdapter creates a new launcher adapter
func NewLauncherAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *LauncherAdapter {
	return &LauncherAdapter{
		log:      log.With("component", "LauncherAdapter"),
		toolsDir: cfg.Tools.Dir,
		usePTY:   cfg.Tools.UsePTY,
		goos:     runtime.GOOS,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// Resolve returns the path of the tool: the tools directory first, then PATH
func (l *LauncherAdapter) Resolve(tool domain.Tool) (string, error) {
	bundled := filepath.Join(l.toolsDir, filepath.FromSlash(tool.Binary))
	if tool.Open {
		if _, err := os.Stat(bundled); err != nil {
			return "", fmt.Errorf("%w: %s (looked in %s)", ErrToolNotFound, tool.Name, l.toolsDir)
		}
		return bundled, nil
	}

	if l.goos == "windows" && filepath.Ext(bundled) == "" {
		bundled += ".exe"
	}
	if info, err := os.Stat(bundled); err == nil && !info.IsDir() {
		return bundled, nil
	}

	path, err := exec.LookPath(filepath.Base(tool.Binary))
	if err != nil {
		return "", fmt.Errorf("%w: %s (looked in %s and PATH)", ErrToolNotFound, tool.Name, l.toolsDir)
	}
	return path, nil
}

// Launch runs the tool until it exits. Cancelling ctx interrupts the tool and
// is not reported as an error.
func (l *LauncherAdapter) Launch(ctx context.Context, tool domain.Tool, args []string) error {
	path, err := l.Resolve(tool)
	if err != nil {
		return err
	}

	if tool.Open {
		return l.open(ctx, path)
	}

	l.log.Debug("launching tool", "tool", tool.Name, "path", path, "args", args, "pty", l.usePTY)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Cancel = func() error {
		return interrupt(cmd.Process)
	}
	cmd.WaitDelay = shutdownGrace

	if l.usePTY {
		err = l.runPTY(cmd)
		if errors.Is(err, pty.ErrUnsupported) {
			l.log.Debug("pty unsupported, running without", "tool", tool.Name)
			cmd = exec.CommandContext(ctx, path, args...)
			cmd.Cancel = func() error { return interrupt(cmd.Process) }
			cmd.WaitDelay = shutdownGrace
			err = l.runPlain(cmd)
		}
	} else {
		err = l.runPlain(cmd)
	}

	if ctx.Err() != nil {
		l.log.Debug("tool stopped", "tool", tool.Name, "reason", ctx.Err())
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", tool.Name, err)
	}
	return nil
}

func (l *LauncherAdapter) runPlain(cmd *exec.Cmd) error {
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	return cmd.Run()
}

// runPTY keeps the tool's colored output by giving it a terminal
func (l *LauncherAdapter) runPTY(cmd *exec.Cmd) error {
	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	// The read fails with EIO once the tool exits
	_, _ = io.Copy(l.stdout, ptyFile)

	return cmd.Wait()
}

// open hands path to the platform's default application
func (l *LauncherAdapter) open(ctx context.Context, path string) error {
	name, args, err := openCommand(l.goos, path)
	if err != nil {
		return err
	}

	l.log.Debug("opening", "path", path, "opener", name)
	if err := exec.CommandContext(ctx, name, args...).Run(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}

func openCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "", path}, nil
	default:
		return "", nil, fmt.Errorf("don't know how to open files on %s", goos)
	}
}

func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return p.Kill()
	}
	return p.Signal(os.Interrupt)
}

// Ensure the adapter implements the interface
var _ usecase.ToolLauncher = (*LauncherAdapter)(nil)

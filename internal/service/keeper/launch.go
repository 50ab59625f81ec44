package keeper

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/okonechnikov/chromesnap/internal/install"
	"github.com/okonechnikov/chromesnap/internal/logger"
)

// errUnsupportedOS is returned when the host has no launch mechanism.
var errUnsupportedOS = errors.New("os not supported")

// Launcher starts an installed application through the host OS.
type Launcher interface {
	Launch(ctx context.Context, appPath string, args []string) error
}

// Launch finds an installed build by query, verifies its bundle layout
// and starts the browser binary with the provided arguments.
func (s *Service) Launch(ctx context.Context, query string, args []string) error {
	ctx = logger.WithKV(ctx, "query", query)

	_, record, err := s.findInstalled(ctx, query)
	if err != nil {
		return err
	}

	ok, err := install.VerifyBundle(record.Path, s.plat)
	if err != nil {
		return fmt.Errorf("verify bundle: %w", err)
	}

	if !ok {
		return fmt.Errorf("verify %s: %w", record.Path, ErrBundleLayout)
	}

	executable := s.plat.ExecutablePath(record.Path)
	logger.InfoKV(ctx, "Launching browser", "executable", executable)

	return s.launcher.Launch(ctx, executable, args)
}

// ExecLauncher starts applications via the host OS "open" mechanism.
type ExecLauncher struct{}

// Launch starts appPath detached from the current process.
func (ExecLauncher) Launch(ctx context.Context, appPath string, args []string) error {
	osLC := strings.ToLower(runtime.GOOS)
	switch {
	case strings.Contains(osLC, "linux") || strings.Contains(osLC, "darwin"):
		return exec.CommandContext(ctx, appPath, args...).Start()
	case strings.Contains(osLC, "windows"):
		startArgs := append([]string{"/C", "start", appPath}, args...)
		return exec.CommandContext(ctx, "cmd.exe", startArgs...).Start()
	default:
		return fmt.Errorf("%s: %w", runtime.GOOS, errUnsupportedOS)
	}
}

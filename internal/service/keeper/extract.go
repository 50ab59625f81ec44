package keeper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Extractor populates a destination directory from an archive. The core
// never parses archive formats itself; extraction is delegated to the
// host system.
type Extractor interface {
	Extract(ctx context.Context, archive, destDir string) error
}

// ExecExtractor shells out to the platform archive utility.
type ExecExtractor struct{}

// Extract unpacks archive into destDir, creating it when needed.
func (ExecExtractor) Extract(ctx context.Context, archive, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("prepare extract dir: %w", err)
	}

	var cmd *exec.Cmd

	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			"Expand-Archive", "-Path", archive, "-DestinationPath", destDir, "-Force")
	} else {
		cmd = exec.CommandContext(ctx, "unzip", "-oq", archive, "-d", destDir)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %s: %w", cmd.Path, string(output), err)
	}

	return nil
}

package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okonechnikov/chromesnap/internal/logger"
)

// PopulateFunc fills a freshly created temporary directory and returns
// the path that should become the installation, e.g. the bundle
// directory an archive extracted into.
type PopulateFunc func(tempDir string) (string, error)

// Atomically runs populate inside a unique temporary directory under
// workRoot and publishes its result at finalPath. The publish step
// tries a same-filesystem rename first and falls back to a recursive
// copy plus removal of the source. finalPath is not touched before the
// publish step, so a previous installation there stays intact and
// usable until the new one is ready. On any failure the temporary
// directory is removed and the original error propagated.
func Atomically(ctx context.Context, populate PopulateFunc, finalPath, workRoot string) (err error) {
	if err = os.MkdirAll(workRoot, 0o755); err != nil {
		return fmt.Errorf("prepare work root: %w", err)
	}

	tempDir, err := os.MkdirTemp(workRoot, "install-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	defer func() {
		if removeErr := os.RemoveAll(tempDir); removeErr != nil && err == nil {
			err = fmt.Errorf("remove temp dir: %w", removeErr)
		}
	}()

	source, err := populate(tempDir)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("prepare install parent: %w", err)
	}

	return publish(ctx, source, finalPath)
}

// publish moves source to finalPath, replacing an existing installation
// only once the new one is complete. The previous installation is
// parked next to finalPath during the swap and restored if the move
// fails.
func publish(ctx context.Context, source, finalPath string) error {
	var previous string

	if _, err := os.Lstat(finalPath); err == nil {
		previous = finalPath + ".previous"
		if err = os.Rename(finalPath, previous); err != nil {
			return fmt.Errorf("park previous install: %w", err)
		}
	}

	if err := move(ctx, source, finalPath); err != nil {
		if previous != "" {
			if restoreErr := os.Rename(previous, finalPath); restoreErr != nil {
				logger.ErrorKV(ctx, "Failed to restore previous install",
					"path", finalPath, "error", restoreErr)
			}
		}

		return err
	}

	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			return fmt.Errorf("remove previous install: %w", err)
		}
	}

	return nil
}

// move renames source to destination, falling back to a recursive copy
// followed by removal of the source when the rename fails (e.g. across
// filesystems).
func move(ctx context.Context, source, destination string) error {
	if err := os.Rename(source, destination); err == nil {
		return nil
	}

	logger.DebugKV(ctx, "Rename failed, falling back to copy",
		"source", source, "destination", destination)

	if err := copyTree(source, destination); err != nil {
		// Do not leave a half-written destination behind.
		_ = os.RemoveAll(destination)

		return fmt.Errorf("copy install: %w", err)
	}

	if err := os.RemoveAll(source); err != nil {
		return fmt.Errorf("remove copy source: %w", err)
	}

	return nil
}

// copyTree recursively copies a file, directory or symlink.
func copyTree(source, destination string) error {
	info, err := os.Lstat(source)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, linkErr := os.Readlink(source)
		if linkErr != nil {
			return linkErr
		}

		return os.Symlink(target, destination)
	case info.IsDir():
		if err = os.MkdirAll(destination, info.Mode().Perm()); err != nil {
			return err
		}

		entries, readErr := os.ReadDir(source)
		if readErr != nil {
			return readErr
		}

		for _, entry := range entries {
			if err = copyTree(
				filepath.Join(source, entry.Name()),
				filepath.Join(destination, entry.Name()),
			); err != nil {
				return err
			}
		}

		return nil
	default:
		return copyFile(source, destination, info.Mode().Perm())
	}
}

// copyFile copies a regular file preserving its permission bits.
func copyFile(source, destination string, mode os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}

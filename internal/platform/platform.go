package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Platform describes one supported build target and how its artifacts
// are named in the snapshot storage and in the release feed.
type Platform struct {
	// Name is the short identifier used in configuration and CLI flags.
	Name string
	// StoragePrefix is the top-level folder in the snapshot bucket.
	StoragePrefix string
	// ReleasePlatform is the platform name used by the release feed.
	ReleasePlatform string
	// ArchiveName is the filename of the downloadable build archive.
	ArchiveName string
	// BundleDir is the directory the archive extracts into; the
	// installer publishes this directory as the installation itself.
	BundleDir string
	// Executable is the browser binary path relative to the
	// installation directory.
	Executable string
}

// errUnsupportedPlatform is returned for hosts without snapshot builds.
var errUnsupportedPlatform = errors.New("platform is not supported")

//nolint:gochecknoglobals // Static platform table.
var known = []Platform{
	{
		Name:            "linux",
		StoragePrefix:   "Linux_x64",
		ReleasePlatform: "Linux",
		ArchiveName:     "chrome-linux.zip",
		BundleDir:       "chrome-linux",
		Executable:      "chrome",
	},
	{
		Name:            "mac",
		StoragePrefix:   "Mac",
		ReleasePlatform: "Mac",
		ArchiveName:     "chrome-mac.zip",
		BundleDir:       "chrome-mac",
		Executable:      filepath.Join("Chromium.app", "Contents", "MacOS", "Chromium"),
	},
	{
		Name:            "mac-arm",
		StoragePrefix:   "Mac_Arm",
		ReleasePlatform: "Mac",
		ArchiveName:     "chrome-mac.zip",
		BundleDir:       "chrome-mac",
		Executable:      filepath.Join("Chromium.app", "Contents", "MacOS", "Chromium"),
	},
	{
		Name:            "win",
		StoragePrefix:   "Win_x64",
		ReleasePlatform: "Windows",
		ArchiveName:     "chrome-win.zip",
		BundleDir:       "chrome-win",
		Executable:      "chrome.exe",
	},
}

// Lookup returns the platform with the given short name.
func Lookup(name string) (Platform, error) {
	for _, p := range known {
		if p.Name == name {
			return p, nil
		}
	}

	return Platform{}, fmt.Errorf("%q: %w", name, errUnsupportedPlatform)
}

// Detect returns the platform matching the host OS and architecture.
func Detect() (Platform, error) {
	switch runtime.GOOS {
	case "linux":
		return Lookup("linux")
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return Lookup("mac-arm")
		}

		return Lookup("mac")
	case "windows":
		return Lookup("win")
	default:
		return Platform{}, fmt.Errorf("%s/%s: %w", runtime.GOOS, runtime.GOARCH, errUnsupportedPlatform)
	}
}

// Resolve returns the named platform, or the detected host platform
// when name is empty.
func Resolve(name string) (Platform, error) {
	if name == "" {
		return Detect()
	}

	return Lookup(name)
}

// ExecutablePath returns the browser binary location inside an
// installation directory.
func (p Platform) ExecutablePath(installPath string) string {
	return filepath.Join(installPath, p.Executable)
}

// ExecutableDir returns the directory containing the browser binary
// inside an installation directory.
func (p Platform) ExecutableDir(installPath string) string {
	return filepath.Dir(p.ExecutablePath(installPath))
}

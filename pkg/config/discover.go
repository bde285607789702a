package config

import (
	"os"
	"path/filepath"
)

// FileName is the per-project config file looked up from the working
// directory.
const FileName = ".underhood.yaml"

// Discover resolves which config file to use: the explicit path, then
// $UNDERHOOD_CONFIG, then the nearest .underhood.yaml walking up from the
// working directory (not above home), then
// $XDG_CONFIG_HOME/underhood/config.yaml. Only the explicit and environment
// paths are returned when missing; found is false when nothing exists.
func Discover(explicit string) (path string, found bool) {
	if explicit != "" {
		return explicit, fileExists(explicit)
	}
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p, fileExists(p)
	}
	if dir, err := os.Getwd(); err == nil {
		if p, ok := findUp(dir); ok {
			return p, true
		}
	}
	if p := UserPath(); p != "" && fileExists(p) {
		return p, true
	}
	return "", false
}

// UserPath is the per-user config location, empty when it cannot be
// determined.
func UserPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "underhood", "config.yaml")
}

// findUp walks up from dir looking for FileName.
func findUp(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, FileName)
		if fileExists(candidate) {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // filesystem root
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Package paths resolves the per-OS configuration directory.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "DeskPilot"

// ConfigDir returns the configuration directory for the current operating
// system. DESKPILOT_CONFIG_DIR overrides it.
func ConfigDir() string {
	if dir := os.Getenv("DESKPILOT_CONFIG_DIR"); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", appName)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".deskpilot")
	}
	return filepath.Join(".", ".deskpilot")
}

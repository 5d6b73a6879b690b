// SPDX-License-Identifier: MIT
package client

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	projectOrg  = "apimgr"
	projectName = "metaseek"
)

// ConfigDir returns the CLI's configuration directory.
//
// Linux/macOS: ~/.config/apimgr/metaseek/
// Windows: %APPDATA%\apimgr\metaseek\
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), projectOrg, projectName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", projectOrg, projectName)
}

// ConfigFile returns the CLI's default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "cli.yml")
}

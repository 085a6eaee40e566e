package home

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome resolves a leading "~/" and strips quotes added by terminals
// when a file is dragged in.
func expandHome(path string) string {
	path = strings.Trim(path, `"'`)
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

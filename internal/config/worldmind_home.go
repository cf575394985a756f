package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetWorldmindHome returns Worldmind's home directory. Priority order:
//  1. WORLDMIND_HOME environment variable, if set (returned as is, not
//     created)
//  2. <repository root>/.worldmind, created if needed, where the root is
//     the nearest directory at or above the working directory holding a
//     .worldmind-root marker or a go.mod declaring this module
//  3. <current working directory>/.worldmind, created if needed
func GetWorldmindHome() (string, error) {
	if home := os.Getenv("WORLDMIND_HOME"); home != "" {
		return home, nil
	}

	root, err := findRepoRoot()
	if err == nil && root != "" {
		return ensureDir(filepath.Join(root, ".worldmind"))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return ensureDir(filepath.Join(cwd, ".worldmind"))
}

func ensureDir(path string) (string, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", path, err)
	}
	return path, nil
}

// findRepoRoot walks up from the working directory looking for a
// .worldmind-root marker file or a go.mod declaring this module.
func findRepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, ".worldmind-root")); err == nil {
			return current, nil
		}

		if data, err := os.ReadFile(filepath.Join(current, "go.mod")); err == nil {
			if strings.Contains(string(data), "github.com/worldmind/worldmind") {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("repository root not found (looking for .worldmind-root or go.mod declaring github.com/worldmind/worldmind)")
}

// CheckpointSQLitePath returns $WORLDMIND_HOME/checkpoints.db.
func CheckpointSQLitePath() (string, error) {
	home, err := GetWorldmindHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "checkpoints.db"), nil
}

// CheckpointFileDir returns $WORLDMIND_HOME/checkpoints, creating it if
// needed.
func CheckpointFileDir() (string, error) {
	home, err := GetWorldmindHome()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(home, "checkpoints"))
}

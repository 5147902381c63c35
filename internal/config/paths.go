// ABOUTME: Standard filesystem paths for msgcomposer configuration and logs
// ABOUTME: Resolves ~/.msgcomposer/ for global and .msgcomposer/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".msgcomposer"
	projectDirName = ".msgcomposer"
	configFileName = "config.yaml"
)

// GlobalDir returns the user-global config directory (~/.msgcomposer/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.msgcomposer/ in cwd).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

func globalConfigFile(home string) string {
	return filepath.Join(home, globalDirName, configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// ConfigFiles lists the files Load reads, global first.
func ConfigFiles(projectRoot string) []string {
	return []string{GlobalConfigFile(), ProjectConfigFile(projectRoot)}
}

// DefaultLogFile is where the TUI writes its log.
func DefaultLogFile() string {
	return filepath.Join(GlobalDir(), "composer.log")
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}

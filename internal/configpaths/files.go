// Package configpaths resolves where PhonePad looks for configuration files.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "phonepad"

// configBases are the file base names probed in every search directory.
var configBases = []string{"config", "server"}

// DefaultConfigDir returns the platform-specific configuration directory for PhonePad.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "PhonePad"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultConfigPath returns the default config file path for the given format using base name "config".
func DefaultConfigPath(format string) (string, error) {
	return DefaultNamedConfigPath("config", format)
}

// DefaultNamedConfigPath returns the default config file path for the given format and base name (e.g., "server").
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+Ext(format)), nil
}

// Ext maps a format name to its file extension. Unknown formats map to json.
func Ext(format string) string {
	switch format {
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return "json"
	}
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// ConfigCandidatePaths builds candidate paths for config files per format.
// If userPath is provided, it is prioritized and routed to the matching loader by extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	addDir := func(dir string, bases []string) {
		for _, base := range bases {
			jsonPaths = append(jsonPaths, filepath.Join(dir, base+".json"))
			yamlPaths = append(yamlPaths, filepath.Join(dir, base+".yaml"), filepath.Join(dir, base+".yml"))
			tomlPaths = append(tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}

	// Working directory candidates
	if wd, err := os.Getwd(); err == nil {
		addDir(wd, append([]string{appName}, configBases...))
	}

	// Config home
	if dir, err := DefaultConfigDir(); err == nil {
		addDir(dir, configBases)
	}

	// System-wide (unix)
	if runtime.GOOS != "windows" {
		addDir(filepath.Join("/etc", appName), configBases)
	}

	return
}

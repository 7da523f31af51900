package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// Paths are the host locations the loader consults.
type Paths struct {
	ConfigFile string // config file to read, may not exist
	HomeDir    string
	DataHome   string // XDG data home
}

// DefaultPaths resolves Paths from the environment and the XDG base
// directories. $ZKSVM_CONFIG wins over the XDG config location.
func DefaultPaths() Paths {
	configFile := os.Getenv(EnvConfigFile)
	if configFile == "" {
		configFile = filepath.Join(xdg.ConfigHome, appName, configFileName)
	}
	return Paths{
		ConfigFile: configFile,
		HomeDir:    xdg.Home,
		DataHome:   xdg.DataHome,
	}
}

// Load reads the config file (a missing file yields defaults), applies the
// environment overrides and fills in the default data directory.
func Load(ctx context.Context, detector platform.Detector, paths Paths) (*Config, error) {
	logger := logging.GetLogger("config")

	cfg, err := NewParser(detector).ParseFile(ctx, paths.ConfigFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug().Str("path", paths.ConfigFile).Msg("No config file, using defaults")
		cfg = &Config{}
	case err != nil:
		return nil, err
	default:
		logger.Debug().Str("path", paths.ConfigFile).Msg("Config loaded")
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}

	cfg.DataDir = expandHome(cfg.DataDir, paths.HomeDir)
	cfg.Keyring = expandHome(cfg.Keyring, paths.HomeDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir(paths)
	}

	return cfg, nil
}

// defaultDataDir prefers an existing ~/.zksvm and otherwise uses the XDG
// data home.
func defaultDataDir(paths Paths) string {
	if paths.HomeDir != "" {
		legacy := filepath.Join(paths.HomeDir, legacyDataDir)
		if info, err := os.Stat(legacy); err == nil && info.IsDir() {
			return legacy
		}
	}
	return filepath.Join(paths.DataHome, appName)
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

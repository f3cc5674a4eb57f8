package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
)

const EnvPrefix = "GLTHUMB"

const configFile = "config.yaml"

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file.
// Reads and puts environment variables with the prefix GLTHUMB_.
// Params from the config should be in uppercase separated with _.
// Without a config file only the defaults and the environment are used.
func LoadConfig(config any, path string) error {
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs", "../../configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, home+"/.glthumb")
		}
	}
	err := fig.Load(config, fig.File(configFile), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) && path == "" {
		return LoadConfigEnv(config)
	}
	return err
}

// LoadConfigEnv loads only the defaults and the environment.
// fig always reads a file, so an empty one is used.
func LoadConfigEnv(config any) error {
	dir, err := os.MkdirTemp("", "glthumb-conf")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()
	if err = os.WriteFile(filepath.Join(dir, configFile), []byte("{}\n"), 0600); err != nil {
		return err
	}
	return fig.Load(config, fig.File(configFile), fig.Dirs(dir), fig.UseEnv(EnvPrefix))
}

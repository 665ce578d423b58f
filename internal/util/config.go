package util

import (
	"errors"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// Configuration collects build metadata and the runtime settings shared by
// the CLI and the REPL. File-backed fields come from an optional TOML file;
// flags override whatever the file sets.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	HistoryFile string `toml:"history_file"`
	PlainREPL   bool   `toml:"plain_repl"`
}

// LoadConfig reads a TOML configuration file. A missing file is not an
// error; the zero configuration is returned.
func LoadConfig(path string) (Configuration, error) {
	var cfg Configuration
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Configuration{}, nil
		}
		return Configuration{}, err
	}
	return cfg, nil
}

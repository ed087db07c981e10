package app

import "errors"

// Config holds everything an App instance needs to run one compile
// invocation. It is produced by the CLI layer.
type Config struct {
	EntryPath  string // file the traversal starts from
	ConfigPath string // optional .hcl file or directory

	// Flag-level overrides layered on top of the loaded config model.
	// Zero values mean "not set on the command line".
	OutDir     string
	Port       int
	SourceMaps bool

	Watch bool // recompile when any visited file changes

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.EntryPath == "" {
		return nil, errors.New("EntryPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

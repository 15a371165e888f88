package app

import (
	"errors"
	"fmt"
	"time"
)

// StdoutPath selects standard output as the output path.
const StdoutPath = "-"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DescriptionPath string // .hcl/.yaml file or a directory of them
	Format          string // "hcl", "yaml" or empty to pick by extension
	OutputPath      string // file or directory; "-" for stdout
	Force           bool   // overwrite an existing output file

	UploadURL string // pre-signed PUT URL

	PreviewURL         string
	PreviewNamespace   string
	PreviewEvent       string
	PreviewReplyEvent  string // wait for this event after emitting
	PreviewTimeout     time.Duration
	PreviewInsecureTLS bool

	LogFormat string
	LogLevel  string
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	formats    = []string{"hcl", "yaml"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DescriptionPath == "" {
		return nil, errors.New("DescriptionPath is a required configuration field and cannot be empty")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !oneOf(cfg.LogLevel, logLevels) {
		return nil, fmt.Errorf("invalid log level %q (valid: %v)", cfg.LogLevel, logLevels)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !oneOf(cfg.LogFormat, logFormats) {
		return nil, fmt.Errorf("invalid log format %q (valid: %v)", cfg.LogFormat, logFormats)
	}
	if cfg.Format != "" && !oneOf(cfg.Format, formats) {
		return nil, fmt.Errorf("invalid description format %q (valid: %v)", cfg.Format, formats)
	}
	if cfg.PreviewTimeout < 0 {
		return nil, fmt.Errorf("preview timeout must not be negative, got %v", cfg.PreviewTimeout)
	}
	return &cfg, nil
}

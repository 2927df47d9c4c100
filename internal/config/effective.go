package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Transport != nil {
		cfg.Transport = strings.ToLower(strings.TrimSpace(*raw.Transport))
	}
	if raw.Host != nil {
		cfg.Host = strings.TrimSpace(*raw.Host)
	}
	if raw.Port != nil {
		cfg.Port = *raw.Port
	}
	if raw.Stateless != nil {
		cfg.Stateless = *raw.Stateless
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.XAuthority != nil {
		path, err := expandHome(strings.TrimSpace(*raw.XAuthority))
		if err != nil {
			return nil, &ValidationError{Path: "xauthority", Err: err}
		}
		cfg.XAuthority = path
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	if s := raw.Screenshot; s != nil {
		if s.DefaultFormat != nil {
			format := strings.ToLower(strings.TrimSpace(*s.DefaultFormat))
			if format == "jpg" {
				format = "jpeg"
			}
			cfg.Screenshot.DefaultFormat = format
		}
		if s.JPEGQuality != nil {
			cfg.Screenshot.JPEGQuality = *s.JPEGQuality
		}
	}

	if m := raw.Metrics; m != nil {
		if m.Enabled != nil {
			cfg.Metrics.Enabled = *m.Enabled
		}
		if m.Path != nil {
			cfg.Metrics.Path = strings.TrimSpace(*m.Path)
		}
	}

	if l := raw.Logging; l != nil {
		if l.Enabled != nil {
			cfg.Logging.Enabled = *l.Enabled
		}
		if l.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*l.Level))
		}
		if l.File != nil {
			path, err := expandHome(strings.TrimSpace(*l.File))
			if err != nil {
				return nil, &ValidationError{Path: "logging.file", Err: err}
			}
			cfg.Logging.File = path
		}
		if l.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *l.MaxSizeMB
		}
		if l.MaxFiles != nil {
			cfg.Logging.MaxFiles = *l.MaxFiles
		}
		if l.IncludeContent != nil {
			cfg.Logging.IncludeContent = *l.IncludeContent
		}
		if l.PreviewLength != nil {
			cfg.Logging.PreviewLength = *l.PreviewLength
		}
	}

	return cfg, nil
}

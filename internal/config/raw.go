package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawScreenshotConfig struct {
	DefaultFormat *string `yaml:"default_format"`
	JPEGQuality   *int    `yaml:"jpeg_quality"`
}

type RawMetricsConfig struct {
	Enabled *bool   `yaml:"enabled"`
	Path    *string `yaml:"path"`
}

type RawLoggingConfig struct {
	Enabled        *bool   `yaml:"enabled"`
	Level          *string `yaml:"level"`
	File           *string `yaml:"file"`
	MaxSizeMB      *int    `yaml:"max_size_mb"`
	MaxFiles       *int    `yaml:"max_files"`
	IncludeContent *bool   `yaml:"include_content"`
	PreviewLength  *int    `yaml:"preview_length"`
}

// RawConfig is one decoded file. Nil fields were not set by that file.
type RawConfig struct {
	Include    IncludeList          `yaml:"include"`
	Transport  *string              `yaml:"transport"`
	Host       *string              `yaml:"host"`
	Port       *int                 `yaml:"port"`
	Stateless  *bool                `yaml:"stateless"`
	Display    *string              `yaml:"display"`
	XAuthority *string              `yaml:"xauthority"`
	LogLevel   *string              `yaml:"log_level"`
	Screenshot *RawScreenshotConfig `yaml:"screenshot"`
	Metrics    *RawMetricsConfig    `yaml:"metrics"`
	Logging    *RawLoggingConfig    `yaml:"logging"`
}

// merge returns r overlaid with every field set in other.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	out.Include = nil

	if other.Transport != nil {
		out.Transport = other.Transport
	}
	if other.Host != nil {
		out.Host = other.Host
	}
	if other.Port != nil {
		out.Port = other.Port
	}
	if other.Stateless != nil {
		out.Stateless = other.Stateless
	}
	if other.Display != nil {
		out.Display = other.Display
	}
	if other.XAuthority != nil {
		out.XAuthority = other.XAuthority
	}
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}

	if other.Screenshot != nil {
		var merged RawScreenshotConfig
		if out.Screenshot != nil {
			merged = *out.Screenshot
		}
		if other.Screenshot.DefaultFormat != nil {
			merged.DefaultFormat = other.Screenshot.DefaultFormat
		}
		if other.Screenshot.JPEGQuality != nil {
			merged.JPEGQuality = other.Screenshot.JPEGQuality
		}
		out.Screenshot = &merged
	}

	if other.Metrics != nil {
		var merged RawMetricsConfig
		if out.Metrics != nil {
			merged = *out.Metrics
		}
		if other.Metrics.Enabled != nil {
			merged.Enabled = other.Metrics.Enabled
		}
		if other.Metrics.Path != nil {
			merged.Path = other.Metrics.Path
		}
		out.Metrics = &merged
	}

	if other.Logging != nil {
		var merged RawLoggingConfig
		if out.Logging != nil {
			merged = *out.Logging
		}
		if other.Logging.Enabled != nil {
			merged.Enabled = other.Logging.Enabled
		}
		if other.Logging.Level != nil {
			merged.Level = other.Logging.Level
		}
		if other.Logging.File != nil {
			merged.File = other.Logging.File
		}
		if other.Logging.MaxSizeMB != nil {
			merged.MaxSizeMB = other.Logging.MaxSizeMB
		}
		if other.Logging.MaxFiles != nil {
			merged.MaxFiles = other.Logging.MaxFiles
		}
		if other.Logging.IncludeContent != nil {
			merged.IncludeContent = other.Logging.IncludeContent
		}
		if other.Logging.PreviewLength != nil {
			merged.PreviewLength = other.Logging.PreviewLength
		}
		out.Logging = &merged
	}

	return out
}

package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	transport
//	host
//	port
//	stateless
//	display
//	xauthority
//	log_level
//	screenshot.default_format
//	screenshot.jpeg_quality
//	metrics.enabled
//	metrics.path
//	logging.max_size_mb
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("unknown path %q", path)
	}
	leaf := func() (string, error) {
		if len(parts) != 2 {
			return "", fmt.Errorf("%s requires a field, e.g. %s.<field>", parts[0], parts[0])
		}
		return parts[1], nil
	}
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("%s has no nested fields", parts[0])
		}
		return v, nil
	}

	switch parts[0] {
	case "transport":
		return scalar(cfg.Transport)
	case "host":
		return scalar(cfg.Host)
	case "port":
		return scalar(cfg.Port)
	case "stateless":
		return scalar(cfg.Stateless)
	case "display":
		return scalar(cfg.Display)
	case "xauthority":
		return scalar(cfg.XAuthority)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "screenshot":
		field, err := leaf()
		if err != nil {
			return nil, err
		}
		switch field {
		case "default_format":
			return cfg.Screenshot.DefaultFormat, nil
		case "jpeg_quality":
			return cfg.Screenshot.JPEGQuality, nil
		}
	case "metrics":
		field, err := leaf()
		if err != nil {
			return nil, err
		}
		switch field {
		case "enabled":
			return cfg.Metrics.Enabled, nil
		case "path":
			return cfg.Metrics.Path, nil
		}
	case "logging":
		field, err := leaf()
		if err != nil {
			return nil, err
		}
		logging := cfg.GetLoggingConfig()
		switch field {
		case "enabled":
			return logging.Enabled, nil
		case "level":
			return logging.Level, nil
		case "file":
			return logging.File, nil
		case "max_size_mb":
			return logging.MaxSizeMB, nil
		case "max_files":
			return logging.MaxFiles, nil
		case "include_content":
			return logging.IncludeContent, nil
		case "preview_length":
			return logging.PreviewLength, nil
		}
	}
	return nil, fmt.Errorf("unknown path %q", path)
}

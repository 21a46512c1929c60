package config

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitepress/internal/foundation/normalization"
	"git.home.luguber.info/inful/sitepress/internal/retry"
	"git.home.luguber.info/inful/sitepress/internal/slug"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel converts l to a slog level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw to a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

var backoffNormalizer = normalization.NewNormalizer(map[string]retry.Mode{
	"fixed":       retry.Fixed,
	"linear":      retry.Linear,
	"exponential": retry.Exponential,
	"exp":         retry.Exponential,
}, retry.Exponential)

// FilenameCase is the case transform applied to generated file names.
// In YAML it is written as 0, 1, 2 or none, lower, upper.
type FilenameCase slug.Case

var filenameCaseNormalizer = normalization.NewNormalizer(map[string]slug.Case{
	"none":  slug.CaseNone,
	"0":     slug.CaseNone,
	"lower": slug.CaseLower,
	"1":     slug.CaseLower,
	"upper": slug.CaseUpper,
	"2":     slug.CaseUpper,
}, slug.CaseNone)

// Case returns the slug case.
func (f FilenameCase) Case() slug.Case { return slug.Case(f) }

// UnmarshalYAML accepts the numeric and named forms.
func (f *FilenameCase) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("filename_case must be a scalar")
	}
	c, err := filenameCaseNormalizer.NormalizeWithError(node.Value)
	if err != nil {
		return fmt.Errorf("filename_case: %w", err)
	}
	*f = FilenameCase(c)
	return nil
}

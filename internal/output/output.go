// Package output writes command results in the format chosen with --output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	// FormatText prints values implementing fmt.Stringer as plain text and
	// falls back to YAML for everything else.
	FormatText Format = "text"
)

// DefaultFormat is the default output format.
var DefaultFormat = FormatYAML

// globalFormat is set by the root command's --output flag.
var globalFormat = DefaultFormat

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatYAML, FormatJSON, FormatText:
		return Format(name), nil
	case "":
		return DefaultFormat, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want yaml, json or text)", name)
	}
}

// SetFormat sets the global output format.
func SetFormat(f Format) {
	globalFormat = f
}

// GetFormat returns the current global output format.
func GetFormat() Format {
	return globalFormat
}

// IsStructured returns true if the output format is structured (JSON/YAML).
func IsStructured() bool {
	return globalFormat == FormatJSON || globalFormat == FormatYAML
}

// Write writes data to stdout in the configured format.
func Write(data any) error {
	return WriteTo(os.Stdout, globalFormat, data)
}

// WriteTo writes data to the given writer in the specified format.
func WriteTo(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case FormatText:
		if s, ok := data.(fmt.Stringer); ok {
			_, err := fmt.Fprintln(w, s.String())
			return err
		}
		return WriteTo(w, FormatYAML, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

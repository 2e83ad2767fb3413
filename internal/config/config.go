// Package config layers option values from the CLI, environment, and a
// TOML file, and watches the file for runtime changes.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sensenode/sensenode/internal/logging"
)

// envPrefix namespaces all environment overrides.
const envPrefix = "SENSENODE_"

// LoadConfig fills the flat options struct with precedence
// CLI flag > SENSENODE_* env var > TOML file > struct default.
//
// Fields opt in with `toml:"section.key"` and `env:"KEY"` tags. The field
// named Config holds the TOML file path. Flags the user set explicitly on
// cmd are never overwritten.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changed := changedFlags(cmd)

	var fileValues map[string]any
	if path := configPath(v, t); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, &fileValues); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)

		if changed[flagName(sf.Name)] {
			continue
		}

		if key := sf.Tag.Get("toml"); key != "" && fileValues != nil {
			if value := lookupDotted(fileValues, key); value != nil {
				applyValue(field, value)
			}
		}

		// Env wins over the file.
		if key := sf.Tag.Get("env"); key != "" {
			if raw := os.Getenv(envPrefix + key); raw != "" {
				applyString(field, raw)
			}
		}
	}

	return nil
}

// changedFlags collects the names of flags the user set on the command
// line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed[f.Name] = true
		}
	})
	return changed
}

// configPath reads the Config field, which humacli populates from the
// --config flag before this runs.
func configPath(v reflect.Value, t reflect.Type) string {
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Name == "Config" {
			return v.Field(i).String()
		}
	}
	return ""
}

// flagName derives the kebab-case flag name humacli generates for a
// field, e.g. LoggingLevel -> logging-level.
func flagName(field string) string {
	var out []rune
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			out = append(out, '-')
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}

// lookupDotted resolves "section.key" paths in the decoded TOML tree.
func lookupDotted(tree map[string]any, path string) any {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := tree[part].(map[string]any)
		if !ok {
			return nil
		}
		tree = next
	}
	return tree[parts[len(parts)-1]]
}

// applyValue writes a decoded TOML value into a field, ignoring values of
// the wrong type.
func applyValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		arr, ok := value.([]any)
		if !ok {
			return
		}
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		field.Set(reflect.ValueOf(out))
	}
}

// applyString parses an env var string into a field. String slices are
// comma separated.
func applyString(field reflect.Value, raw string) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			field.SetBool(b)
		}
	case reflect.Int:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	}
}

// LoadLoggingConfig reads just the [logging] table from the config file.
// Keys other than level and format are per-module levels. Missing or
// unparsable files yield the defaults.
func LoadLoggingConfig(path string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var raw struct {
		Logging map[string]string `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg
	}

	for key, value := range raw.Logging {
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		default:
			cfg.Modules[key] = value
		}
	}
	return cfg
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmplkit/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML config files. Flag
// values are read from the top-level section named name:
//
//	config:
//	  log-level: debug
//	  log:
//	    pretty: false
//	  path: [./templates, ./data]
//
// Nested maps are flattened by joining keys with "-", and "_" in keys is
// read as "-", so the entries above set --log-level, --log-pretty and
// --path. Command-line flags override config file values. A file that does
// not decode is ignored with a warning.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			log.Warn("ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		section, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		c := make(config)
		c.flatten("", section)

		return c, nil
	}
}

// config implements [kong.Resolver] over a flattened YAML section.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = flagValue(v)
	}
}

// flagValue converts a decoded YAML value to the form kong parses. Kong
// requires numbers as strings, and lists as a separated string.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, e := range v {
			items[i] = fmt.Sprint(flagValue(e))
		}

		return strings.Join(items, ",")
	default:
		return v
	}
}

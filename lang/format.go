package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmplkit/trace"
)

// Encoding selects the serialization of a record dump.
type Encoding int

const (
	EncodingYAML Encoding = iota
	EncodingJSON
)

func (e Encoding) String() string {
	switch e {
	case EncodingYAML:
		return "yaml"
	case EncodingJSON:
		return "json"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Encodings returns an iterator over the names of all encodings.
func Encodings() iter.Seq[string] {
	return slices.Values([]string{EncodingYAML.String(), EncodingJSON.String()})
}

// ParseEncoding parses "yaml" or "json".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return EncodingYAML, nil
	case "json":
		return EncodingJSON, nil
	default:
		return 0, ErrEncoding.With(slog.String("encoding", s))
	}
}

// WriteRecord writes the record DAG rooted at n to w. An indent of zero
// writes YAML in flow style and JSON on a single line.
func WriteRecord(ctx context.Context, w io.Writer, n trace.Node, enc Encoding, indent int) error {
	switch enc {
	case EncodingYAML:
		return writeYAML(ctx, w, trace.Dump(n), indent)
	case EncodingJSON:
		return writeJSON(w, trace.Dump(n), indent)
	default:
		return ErrEncoding.With(slog.String("encoding", enc.String()))
	}
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// LoadData decodes a YAML or JSON document into plain Go values: maps with
// string keys, slices and scalars.
func LoadData(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("input", "data"))
	}

	return v, nil
}

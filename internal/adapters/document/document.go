// Package document reads untrusted JSON or YAML payloads into generic
// mappings for the schema layer.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// jsonAPI keeps numbers as json.Number so integral values survive decoding
// exactly.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// Format names a payload encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Sentinel kinds for document errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrDecode            = errors.New("decode document failed")
)

// ParseFormat accepts "json", "yaml" or "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Decode reads one payload. The payload may be a single mapping or a list
// of mappings; either way a list is returned.
func Decode(r io.Reader, format Format) ([]map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var root any
	switch format {
	case FormatJSON:
		if err := jsonAPI.Unmarshal(raw, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	switch v := root.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		docs := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T, want a mapping", ErrDecode, i, item)
			}
			docs = append(docs, m)
		}
		return docs, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: top level is %T, want a mapping or a list", ErrDecode, root)
	}
}

// DecodeFile opens path and decodes it using the format implied by its
// extension.
func DecodeFile(path string) ([]map[string]any, Format, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, format, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	docs, err := Decode(f, format)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", path, err)
	}
	return docs, format, nil
}

// Encode writes v in the given format with two-space indentation.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

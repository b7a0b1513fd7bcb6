// Package document decodes credential files into the generic JSON shape the
// claim compiler consumes: map[string]any, []any, string, json.Number,
// float64 (YAML floats only), bool, nil.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format names a credential encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Extensions lists the file extensions recognised by FormatFromPath.
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, true
	case ".yaml", ".yml":
		return YAML, true
	}
	return "", false
}

// IsCredentialFile reports whether path has a recognised extension.
func IsCredentialFile(path string) bool {
	_, ok := FormatFromPath(path)
	return ok
}

// ReadFile decodes the credential stored at path.
func ReadFile(path string) (any, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported credential file %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	return Decode(data, format)
}

// Read decodes a whole stream. An empty format sniffs JSON by its first byte
// and falls back to YAML.
func Read(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if format == "" {
		format = sniff(data)
	}
	return Decode(data, format)
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSON
	}
	return YAML
}

// Decode parses data as a single credential document.
func Decode(data []byte, format Format) (any, error) {
	switch format {
	case JSON:
		var v any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("failed to parse JSON credential: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("failed to parse JSON credential: trailing data")
		}
		return v, nil
	case YAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse YAML credential: %w", err)
		}
		return Normalize(v)
	}
	return nil, fmt.Errorf("unknown credential format %q", format)
}

// Normalize rewrites YAML-decoded values into the shapes Decode produces for
// JSON: maps get string keys, integers become json.Number so large values
// keep every digit, and timestamps become RFC 3339 strings.
func Normalize(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v in credential", k)
			}
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(val)), nil
	case int64:
		return json.Number(strconv.FormatInt(val, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(val, 10)), nil
	case float32:
		return float64(val), nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	}
	return v, nil
}

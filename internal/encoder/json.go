package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
)

// DecodeJSON decodes a single JSON document, keeping numbers as json.Number
// so their textual form survives re-encoding.
func DecodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", errs.ErrInput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid JSON: trailing data", errs.ErrInput)
	}
	return v, nil
}

// Stringify renders a JSON value as a query value: strings pass through
// verbatim, everything else is serialized compactly.
func Stringify(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return CompactJSON(v)
}

// CompactJSON serializes v without HTML escaping or a trailing newline.
func CompactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInput, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter formats output as JSON with optional pretty printing.
type JSONFormatter struct {
	indent string
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		indent: "  ",
	}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Supports returns true; JSON can represent any decoded response.
func (f *JSONFormatter) Supports(data any) bool {
	return true
}

// Format writes data as one JSON document followed by a newline. HTML
// characters are not escaped and json.Number values keep their text.
func (f *JSONFormatter) Format(w io.Writer, data any, config *FormatConfig) error {
	if config == nil {
		config = NewFormatConfig()
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if config.Pretty {
		encoder.SetIndent("", f.indent)
	}

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// SetIndent sets the indentation string for pretty printing.
func (f *JSONFormatter) SetIndent(indent string) *JSONFormatter {
	f.indent = indent
	return f
}

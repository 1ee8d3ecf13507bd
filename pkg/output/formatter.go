// Package output renders decoded API responses as JSON, YAML or a table.
package output

import (
	"io"
)

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes data to w.
	Format(w io.Writer, data any, config *FormatConfig) error

	// Name returns the name of the formatter (e.g., "json", "yaml", "table").
	Name() string

	// Supports returns true if the formatter can handle the given data.
	Supports(data any) bool
}

// FormatConfig contains configuration options for formatting output.
type FormatConfig struct {
	// Pretty enables indentation (JSON only; YAML is always indented)
	Pretty bool

	// Colors enables colored output
	Colors bool

	// ShowHeaders controls header display (for tables)
	ShowHeaders bool

	// Columns restricts and orders table columns. Empty means every key of
	// the rows, sorted.
	Columns []string

	// MaxWidth truncates table cells. Zero disables truncation.
	MaxWidth int
}

// NewFormatConfig creates a new FormatConfig with sensible defaults.
func NewFormatConfig() *FormatConfig {
	return &FormatConfig{
		Colors:      true,
		ShowHeaders: true,
		MaxWidth:    60,
	}
}

// WithPretty sets the pretty-printing option.
func (c *FormatConfig) WithPretty(pretty bool) *FormatConfig {
	c.Pretty = pretty
	return c
}

// WithColors sets the colors option.
func (c *FormatConfig) WithColors(colors bool) *FormatConfig {
	c.Colors = colors
	return c
}

// WithColumns sets the table columns.
func (c *FormatConfig) WithColumns(columns []string) *FormatConfig {
	c.Columns = columns
	return c
}

// WithMaxWidth sets the maximum cell width.
func (c *FormatConfig) WithMaxWidth(width int) *FormatConfig {
	c.MaxWidth = width
	return c
}

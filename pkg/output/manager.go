package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Options controls how one response is rendered.
type Options struct {
	// Format names a registered formatter. Empty uses the default.
	Format string
	Pretty bool
	// Raw disables unwrapping of the items field.
	Raw bool
	// Filter is an optional boolean expression applied to item arrays.
	Filter  string
	Colors  bool
	Columns []string
}

// Manager manages output formatting and provides high-level formatting methods.
type Manager struct {
	formatters    map[string]Formatter
	defaultFormat string
}

// NewManager creates a new output manager with default formatters.
func NewManager() *Manager {
	m := &Manager{
		formatters:    make(map[string]Formatter),
		defaultFormat: "json",
	}

	m.RegisterFormatter(NewJSONFormatter())
	m.RegisterFormatter(NewYAMLFormatter())
	m.RegisterFormatter(NewTableFormatter())

	return m
}

// RegisterFormatter registers a new formatter.
func (m *Manager) RegisterFormatter(formatter Formatter) {
	m.formatters[formatter.Name()] = formatter
}

// GetFormatter returns a formatter by name.
func (m *Manager) GetFormatter(name string) (Formatter, error) {
	formatter, ok := m.formatters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("formatter '%s' not found", name)
	}
	return formatter, nil
}

// SetDefaultFormat sets the default output format.
func (m *Manager) SetDefaultFormat(format string) {
	m.defaultFormat = format
}

// GetSupportedFormats returns the sorted names of all formatters.
func (m *Manager) GetSupportedFormats() []string {
	formats := make([]string, 0, len(m.formatters))
	for name := range m.formatters {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// Format formats data with the named formatter and no envelope handling.
func (m *Manager) Format(w io.Writer, data any, format string, config *FormatConfig) error {
	if format == "" {
		format = m.defaultFormat
	}

	formatter, err := m.GetFormatter(format)
	if err != nil {
		return err
	}

	// Tables cannot show scalars or empty results; those fall back to JSON.
	if !formatter.Supports(data) {
		formatter = m.formatters["json"]
	}

	return formatter.Format(w, data, config)
}

// Render unwraps, filters and formats a response.
func (m *Manager) Render(w io.Writer, data any, opts Options) error {
	data = Unwrap(data, opts.Raw)

	if opts.Filter != "" {
		filter, err := CompileFilter(opts.Filter)
		if err != nil {
			return err
		}
		if data, err = filter.Apply(data); err != nil {
			return err
		}
	}

	config := NewFormatConfig().
		WithPretty(opts.Pretty).
		WithColors(opts.Colors).
		WithColumns(opts.Columns)

	return m.Format(w, data, opts.Format, config)
}

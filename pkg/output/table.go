package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/pterm/pterm"
)

// TableFormatter formats output as a table using pterm.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Supports reports whether data is a non-empty array or object.
func (f *TableFormatter) Supports(data any) bool {
	switch v := data.(type) {
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return false
	}
}

// Format renders an array of objects as one row per element, an array of
// scalars as a single VALUE column, and an object as KEY/VALUE rows.
func (f *TableFormatter) Format(w io.Writer, data any, config *FormatConfig) error {
	if config == nil {
		config = NewFormatConfig()
	}

	var tableData [][]string
	switch v := data.(type) {
	case []any:
		tableData = f.formatSlice(v, config)
	case map[string]any:
		tableData = f.formatMap(v, config)
	default:
		return fmt.Errorf("unsupported data type for table formatting: %T", data)
	}
	if len(tableData) == 0 {
		return nil
	}

	table := pterm.DefaultTable.WithHasHeader(config.ShowHeaders)
	if config.Colors {
		table = table.WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold))
	} else {
		pterm.DisableColor()
		defer pterm.EnableColor()
	}

	rendered, err := table.WithData(tableData).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err = io.WriteString(w, rendered+"\n")
	return err
}

// formatSlice builds rows for an array.
func (f *TableFormatter) formatSlice(items []any, config *FormatConfig) [][]string {
	columns := config.Columns
	if len(columns) == 0 {
		columns = f.autoDetectColumns(items)
	}

	tableData := make([][]string, 0, len(items)+1)

	if len(columns) == 0 {
		if config.ShowHeaders {
			tableData = append(tableData, []string{"VALUE"})
		}
		for _, item := range items {
			tableData = append(tableData, []string{f.formatValue(item, config.MaxWidth)})
		}
		return tableData
	}

	if config.ShowHeaders {
		headers := make([]string, len(columns))
		for i, col := range columns {
			headers[i] = strings.ToUpper(col)
		}
		tableData = append(tableData, headers)
	}

	for _, item := range items {
		obj, _ := item.(map[string]any)
		row := make([]string, len(columns))
		for j, col := range columns {
			if obj != nil {
				row[j] = f.formatValue(obj[col], config.MaxWidth)
			}
		}
		tableData = append(tableData, row)
	}

	return tableData
}

// formatMap formats an object as a two-column key-value table.
func (f *TableFormatter) formatMap(obj map[string]any, config *FormatConfig) [][]string {
	tableData := make([][]string, 0, len(obj)+1)
	if config.ShowHeaders {
		tableData = append(tableData, []string{"KEY", "VALUE"})
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		tableData = append(tableData, []string{key, f.formatValue(obj[key], config.MaxWidth)})
	}
	return tableData
}

// autoDetectColumns returns the sorted union of keys over all object rows,
// or nil when no row is an object.
func (f *TableFormatter) autoDetectColumns(items []any) []string {
	seen := map[string]bool{}
	var columns []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

// formatValue renders one cell. Nested values are shown as compact JSON.
func (f *TableFormatter) formatValue(value any, maxWidth int) string {
	var s string
	switch val := value.(type) {
	case nil:
		return ""
	case string:
		s = val
	case json.Number:
		s = val.String()
	case bool:
		s = fmt.Sprint(val)
	default:
		compact, err := encoder.CompactJSON(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = compact
		}
	}

	if maxWidth > 3 && len(s) > maxWidth {
		s = s[:maxWidth-3] + "..."
	}
	return s
}

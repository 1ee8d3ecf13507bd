package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestJSONFormatter(t *testing.T) {
	data := decode(t, `{"b":1.50,"a":"<x>","n":12345678901234567890}`)

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, data, NewFormatConfig()))
	assert.Equal(t, `{"a":"<x>","b":1.50,"n":12345678901234567890}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, NewJSONFormatter().Format(&buf, []any{"x"}, NewFormatConfig().WithPretty(true)))
	assert.Equal(t, "[\n  \"x\"\n]\n", buf.String())

	buf.Reset()
	require.NoError(t, NewJSONFormatter().Format(&buf, nil, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	data := decode(t, `{"name":"c1","budget":100,"tags":["a"]}`)

	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, data, nil))
	assert.Equal(t, "budget: 100\nname: c1\ntags:\n  - a\n", buf.String())

	buf.Reset()
	require.NoError(t, NewYAMLFormatter().Format(&buf, nil, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	f := NewTableFormatter()
	config := NewFormatConfig().WithColors(false)

	t.Run("supports", func(t *testing.T) {
		assert.True(t, f.Supports([]any{1}))
		assert.True(t, f.Supports(map[string]any{"a": 1}))
		assert.False(t, f.Supports([]any{}))
		assert.False(t, f.Supports("x"))
		assert.False(t, f.Supports(nil))
	})

	t.Run("rows", func(t *testing.T) {
		data := decode(t, `[{"id":"1","name":"spring","targeting":{"geo":["US"]}},{"id":"2","status":"PAUSED"}]`)
		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, data, config))

		out := buf.String()
		for _, want := range []string{"ID", "NAME", "STATUS", "TARGETING", "spring", "PAUSED", `{"geo":["US"]}`} {
			assert.Contains(t, out, want)
		}
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
	})

	t.Run("columns", func(t *testing.T) {
		data := decode(t, `[{"id":"1","name":"spring"}]`)
		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, data, NewFormatConfig().WithColors(false).WithColumns([]string{"name"})))
		assert.Contains(t, buf.String(), "spring")
		assert.NotContains(t, buf.String(), "ID")
	})

	t.Run("object", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, map[string]any{"b": true, "a": nil}, config))
		out := buf.String()
		assert.Contains(t, out, "KEY")
		assert.Less(t, strings.Index(out, "a"), strings.Index(out, "b"))
	})

	t.Run("truncation", func(t *testing.T) {
		assert.Equal(t, "abcd...", f.formatValue(strings.Repeat("abcd", 5), 7))
		assert.Equal(t, "12", f.formatValue(json.Number("12"), 7))
	})
}

func TestUnwrap(t *testing.T) {
	withItems := map[string]any{"items": []any{"a"}, "bookmark": "b"}
	assert.Equal(t, []any{"a"}, Unwrap(withItems, false))
	assert.Equal(t, withItems, Unwrap(withItems, true))
	assert.Equal(t, map[string]any{"id": "1"}, Unwrap(map[string]any{"id": "1"}, false))
	assert.Nil(t, Unwrap(nil, false))
}

func TestFilter(t *testing.T) {
	data := decode(t, `[
		{"id":"1","status":"ACTIVE","daily_spend_cap":5000},
		{"id":"2","status":"PAUSED","daily_spend_cap":9000},
		{"id":"3","status":"ACTIVE","daily_spend_cap":100}
	]`)

	f, err := CompileFilter(`status == "ACTIVE" && daily_spend_cap > 1000`)
	require.NoError(t, err)

	got, err := f.Apply(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got.([]any)[0].(map[string]any)["id"])
	assert.Equal(t, json.Number("5000"), got.([]any)[0].(map[string]any)["daily_spend_cap"], "kept items are not normalized")

	f, err = CompileFilter(`item.id in ["2", "3"]`)
	require.NoError(t, err)
	got, err = f.Apply(map[string]any{"items": data, "bookmark": "x"})
	require.NoError(t, err)
	assert.Len(t, got.(map[string]any)["items"], 2)
	assert.Equal(t, "x", got.(map[string]any)["bookmark"])

	got, err = f.Apply("scalar")
	require.NoError(t, err)
	assert.Equal(t, "scalar", got)

	_, err = CompileFilter(`status ==`)
	assert.Error(t, err)
}

func TestManager_Render(t *testing.T) {
	m := NewManager()
	assert.Equal(t, []string{"json", "table", "yaml"}, m.GetSupportedFormats())

	resp := decode(t, `{"items":[{"id":"1"},{"id":"2"}],"bookmark":null}`)

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf, resp, Options{}))
	assert.Equal(t, `[{"id":"1"},{"id":"2"}]`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, m.Render(&buf, resp, Options{Raw: true}))
	assert.Equal(t, `{"bookmark":null,"items":[{"id":"1"},{"id":"2"}]}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, m.Render(&buf, resp, Options{Filter: `id == "2"`, Format: "yaml"}))
	assert.Equal(t, "- id: \"2\"\n", buf.String())

	buf.Reset()
	require.NoError(t, m.Render(&buf, nil, Options{Format: "table"}), "table falls back to JSON")
	assert.Equal(t, "null\n", buf.String())

	assert.Error(t, m.Render(&buf, resp, Options{Format: "csv"}))
}

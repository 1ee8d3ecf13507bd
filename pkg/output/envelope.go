package output

// Unwrap returns the items field of an object response unless raw is set.
// Any other value is returned unchanged.
func Unwrap(data any, raw bool) any {
	if raw {
		return data
	}
	if obj, ok := data.(map[string]any); ok {
		if items, ok := obj["items"]; ok {
			return items
		}
	}
	return data
}

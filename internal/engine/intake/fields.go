package intake

import "leadflow/internal/platform/graph"

// ExtractField returns the first value of the first entry whose name matches
// key exactly, or "" when the key is absent or its value list is empty.
// Duplicate names later in the list are never consulted; that matches the
// platform's observed delivery behavior.
func ExtractField(fields []graph.Field, key string) string {
	for _, f := range fields {
		if f.Name == key {
			if len(f.Values) == 0 {
				return ""
			}
			return f.Values[0]
		}
	}
	return ""
}

// ExtractFirst tries each key in order and returns the first non-empty hit.
// Lead forms are inconsistent about field naming, hence the fallback chains.
func ExtractFirst(fields []graph.Field, keys ...string) string {
	for _, key := range keys {
		if v := ExtractField(fields, key); v != "" {
			return v
		}
	}
	return ""
}

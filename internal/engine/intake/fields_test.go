package intake

import (
	"testing"

	"leadflow/internal/platform/graph"
)

func TestExtractField(t *testing.T) {
	tests := []struct {
		name     string
		fields   []graph.Field
		key      string
		expected string
	}{
		{
			name: "Simple match",
			fields: []graph.Field{
				{Name: "email", Values: []string{"a@x.com"}},
			},
			key:      "email",
			expected: "a@x.com",
		},
		{
			name: "First match wins over duplicate",
			fields: []graph.Field{
				{Name: "email", Values: []string{"a@x.com"}},
				{Name: "email", Values: []string{"b@x.com"}},
			},
			key:      "email",
			expected: "a@x.com",
		},
		{
			name: "First value of multi-value field",
			fields: []graph.Field{
				{Name: "phone_number", Values: []string{"+911234567890", "+919999999999"}},
			},
			key:      "phone_number",
			expected: "+911234567890",
		},
		{
			name: "Absent key",
			fields: []graph.Field{
				{Name: "email", Values: []string{"a@x.com"}},
			},
			key:      "phone",
			expected: "",
		},
		{
			name: "Empty value list",
			fields: []graph.Field{
				{Name: "email", Values: nil},
			},
			key:      "email",
			expected: "",
		},
		{
			name:     "Case sensitive names",
			fields:   []graph.Field{{Name: "Email", Values: []string{"a@x.com"}}},
			key:      "email",
			expected: "",
		},
		{
			name:     "Nil field list",
			fields:   nil,
			key:      "email",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractField(tt.fields, tt.key)
			if got != tt.expected {
				t.Errorf("ExtractField(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestExtractFirst(t *testing.T) {
	fields := []graph.Field{
		{Name: "name", Values: []string{"Asha"}},
		{Name: "phone", Values: []string{"+911234"}},
	}

	if got := ExtractFirst(fields, "full_name", "name"); got != "Asha" {
		t.Errorf("expected fallback to name, got %q", got)
	}
	if got := ExtractFirst(fields, "phone_number", "phone"); got != "+911234" {
		t.Errorf("expected fallback to phone, got %q", got)
	}
	if got := ExtractFirst(fields, "city", "location"); got != "" {
		t.Errorf("expected empty for missing keys, got %q", got)
	}
}

package common

import (
	"reflect"
	"testing"
)

func TestIsJSON(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "Valid object",
			input:    `{"a": 1}`,
			expected: true,
		},
		{
			name:     "Empty object",
			input:    `{}`,
			expected: true,
		},
		{
			name:     "Not JSON",
			input:    "definitely not json",
			expected: false,
		},
		{
			name:     "Array is not an object",
			input:    `[1, 2]`,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsJSON(tc.input); got != tc.expected {
				t.Errorf("IsJSON(%q) got = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestJSONStrToMap(t *testing.T) {
	got, err := JSONStrToMap(`{"a": {"b": 2}}`)
	if err != nil {
		t.Fatalf("JSONStrToMap() unexpected error: %v", err)
	}
	want := map[string]interface{}{"a": map[string]interface{}{"b": float64(2)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("JSONStrToMap() got = %v, want %v", got, want)
	}

	if _, err := JSONStrToMap("{bad"); err == nil {
		t.Errorf("JSONStrToMap() expected error for malformed input, got nil")
	}
}

func TestMapToJSONStr(t *testing.T) {
	got, err := MapToJSONStr(map[string]interface{}{"payload": true})
	if err != nil {
		t.Fatalf("MapToJSONStr() unexpected error: %v", err)
	}
	if got != `{"payload":true}` {
		t.Errorf("MapToJSONStr() got = %q, want %q", got, `{"payload":true}`)
	}
}

package strings

import "testing"

func TestPlural(t *testing.T) {
	tests := []struct {
		singular string
		plural   string
		count    int
		expected string
	}{
		{"item", "items", 1, "item"},
		{"item", "items", 0, "items"},
		{"item", "items", 2, "items"},
		{"person", "people", 1, "person"},
		{"person", "people", 5, "people"},
	}

	for _, test := range tests {
		result := Pluralize(test.singular, test.plural, test.count)
		if result != test.expected {
			t.Errorf("Plural(%q, %q, %d) = %q, expected %q",
				test.singular, test.plural, test.count, result, test.expected)
		}
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "error", "errors"); got != "1 error" {
		t.Errorf("Count(1) = %q", got)
	}
	if got := Count(3, "warning", "warnings"); got != "3 warnings" {
		t.Errorf("Count(3) = %q", got)
	}
}

package colors

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"single color", string(RED) + "error" + string(RESET), "error"},
		{"extended color", string(ORANGE) + "warn" + string(RESET) + ": x", "warn: x"},
		{"bold", string(BOLD_RED) + "a" + string(RESET) + "b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.in); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSprintDisabled(t *testing.T) {
	old := Enabled
	Enabled = false
	defer func() { Enabled = old }()

	if got := RED.Sprintf("%d", 42); got != "42" {
		t.Errorf("Sprintf with colors disabled = %q, want %q", got, "42")
	}
}

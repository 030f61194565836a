package numeric

import "testing"

func TestStringToInteger(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"1_000_000", 1000000, false},
		{"0xFF", 255, false},
		{"0Xff_ff", 65535, false},
		{"0o17", 15, false},
		{"0b1010", 10, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"9223372036854775808", 0, true},
		{"0x", 0, true},
		{"1__0", 0, true},
		{"12a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := StringToInteger(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StringToInteger(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("StringToInteger(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	if !IsHexadecimal("0x1f") || IsHexadecimal("1f") {
		t.Error("IsHexadecimal")
	}
	if !IsOctal("0o7") || IsOctal("0o8") {
		t.Error("IsOctal")
	}
	if !IsBinary("0b1") || IsBinary("0b2") {
		t.Error("IsBinary")
	}
	if !IsDecimal("1_2") || IsDecimal("_12") {
		t.Error("IsDecimal")
	}
}

package source

import "testing"

func TestAdvance(t *testing.T) {
	p := Start()
	p.Advance("ab\ncd")
	if p.Line != 2 || p.Column != 3 || p.Index != 5 {
		t.Errorf("Advance = %+v, want line 2 column 3 index 5", p)
	}
}

func TestAdvanceBytes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		index int
		col   int
	}{
		{"ascii", "abc", 3, 4},
		{"multi-byte rune", "é!", 3, 3},
		{"invalid byte", "a\xffb", 3, 4},
		{"truncated rune", "\xc3x", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Start()
			p.Advance(tt.input)
			if p.Index != tt.index || p.Column != tt.col || p.Line != 1 {
				t.Errorf("Advance(%q) = %+v, want index %d column %d", tt.input, p, tt.index, tt.col)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	loc := NewLocation("main.pl", Position{Line: 3, Column: 7}, Position{Line: 3, Column: 9})
	if got := loc.String(); got != "main.pl:3:7" {
		t.Errorf("String() = %q", got)
	}
	if (Location{Filename: "x.pl"}).String() != "x.pl" {
		t.Error("zero location should render only the file name")
	}
}

func TestLine(t *testing.T) {
	content := "first\nsecond\r\nthird"
	tests := []struct {
		line int
		want string
		ok   bool
	}{
		{1, "first", true},
		{2, "second", true},
		{3, "third", true},
		{4, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		got, ok := Line(content, tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Line(%d) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

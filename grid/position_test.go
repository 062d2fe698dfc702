package grid

import "testing"

func TestColumnLetterRoundTrip(t *testing.T) {
	cases := []struct {
		letters string
		col     int
	}{
		{"A", 0},
		{"B", 1},
		{"K", 10},
		{"Y", 24},
		{"Z", 25},
		{"AA", 26},
		{"AB", 27},
		{"AZ", 51},
		{"BA", 52},
		{"BB", 53},
		{"BY", 76},
		{"BZ", 77},
		{"CA", 78},
		{"DF", 109},
		{"FX", 179},
		{"LZ", 337},
		{"YH", 657},
		{"YZ", 675},
		{"ZA", 676},
		{"ZY", 700},
		{"ZZ", 701},
		{"AAA", 702},
		{"AAB", 703},
		{"AAZ", 727},
		{"ABA", 728},
		{"ACA", 754},
		{"ADE", 784},
		{"ADZ", 805},
		{"AYY", 1350},
		{"AYZ", 1351},
		{"AZA", 1352},
		{"AZZ", 1377},
		{"BAA", 1378},
		{"BAZ", 1403},
		{"BBA", 1404},
		{"BCA", 1430},
		{"BCD", 1433},
		{"BYZ", 2027},
		{"BZA", 2028},
		{"BZZ", 2053},
		{"CAA", 2054},
		{"CHI", 2244},
		{"FAA", 4082},
		{"FCA", 4134},
		{"FCC", 4136},
		{"FLY", 4392},
		{"FLZ", 4393},
		{"FMA", 4394},
		{"HCZ", 5511},
		{"HDA", 5512},
		{"HYZ", 6083},
		{"HZA", 6084},
		{"HZZ", 6109},
		{"XFD", 16383},
	}
	for _, tc := range cases {
		col, ok := colFromLetters(tc.letters)
		if !ok {
			t.Fatalf("colFromLetters(%q) failed", tc.letters)
		}
		if col != tc.col {
			t.Fatalf("colFromLetters(%q) = %d, want %d", tc.letters, col, tc.col)
		}
		if got := colToLetters(tc.col); got != tc.letters {
			t.Fatalf("colToLetters(%d) = %q, want %q", tc.col, got, tc.letters)
		}
	}
}

func TestColumnLettersOutOfRange(t *testing.T) {
	for _, s := range []string{"XFE", "ZZZ"} {
		if _, ok := colFromLetters(s); ok {
			t.Fatalf("colFromLetters(%q) accepted out-of-range column", s)
		}
	}
}

func TestFromStringValid(t *testing.T) {
	cases := []struct {
		label string
		pos   Position
	}{
		{"A1", Position{0, 0}},
		{"B2", Position{1, 1}},
		{"AZ12", Position{11, 51}},
		{"AA12", Position{11, 26}},
		{"H3", Position{2, 7}},
		{"XFD16384", Position{16383, 16383}},
	}
	for _, tc := range cases {
		if got := FromString(tc.label); got != tc.pos {
			t.Fatalf("FromString(%q) = %v, want %v", tc.label, got, tc.pos)
		}
	}
}

func TestFromStringRejects(t *testing.T) {
	malformed := []string{
		"",
		"A",
		"1",
		"e2",
		"A0",
		"A-1",
		"A+1",
		"R2D2",
		"C3PO",
		"A16385",
		"XFD16385",
		"XFE16384",
		"ZZZ1",
		"AAAZ12",
		"AZ12A-*45a",
		"A1234567890123456789",
		"ABCDEFGHIJKLMNOPQRS8",
	}
	for _, s := range malformed {
		if got := FromString(s); got != None {
			t.Fatalf("FromString(%q) = %v, want None", s, got)
		}
	}
}

func TestPositionString(t *testing.T) {
	cases := []struct {
		pos  Position
		want string
	}{
		{Position{0, 0}, "A1"},
		{Position{11, 51}, "AZ12"},
		{Position{16383, 16383}, "XFD16384"},
		{Position{0, 16385}, ""},
		{Position{16385, 0}, ""},
		{None, ""},
	}
	for _, tc := range cases {
		if got := tc.pos.String(); got != tc.want {
			t.Fatalf("%v.String() = %q, want %q", tc.pos, got, tc.want)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	probes := []Position{
		{0, 0}, {0, 25}, {0, 26}, {0, 701}, {0, 702}, {0, 16383},
		{11, 51}, {16383, 0}, {16383, 16383}, {2, 7},
	}
	for _, p := range probes {
		if got := FromString(p.String()); got != p {
			t.Fatalf("round trip of %v gave %v", p, got)
		}
	}
	for _, label := range []string{"A1", "ZZ701", "AAA703", "XFD16384"} {
		if got := FromString(label).String(); got != label {
			t.Fatalf("round trip of %q gave %q", label, got)
		}
	}
}

func TestPositionLess(t *testing.T) {
	a := Position{Row: 5, Col: 1}
	b := Position{Row: 0, Col: 2}
	if !a.Less(b) {
		t.Fatalf("expected %v < %v (column-first order)", a, b)
	}
	if b.Less(a) {
		t.Fatalf("unexpected %v < %v", b, a)
	}
	c := Position{Row: 6, Col: 1}
	if !a.Less(c) || c.Less(a) {
		t.Fatalf("row order inside a column is broken")
	}
}

func TestFormulaErrorStrings(t *testing.T) {
	cases := []struct {
		err  FormulaError
		want string
	}{
		{FormulaError{Category: ErrRef}, "#REF!"},
		{FormulaError{Category: ErrValue}, "#VALUE!"},
		{FormulaError{Category: ErrDiv0}, "#DIV/0!"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("FormulaError(%d) = %q, want %q", tc.err.Category, got, tc.want)
		}
	}
}

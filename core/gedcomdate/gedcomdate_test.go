package gedcomdate

import "testing"

func TestParseDayMonthYear(t *testing.T) {
	p, ok := Parse("14 JUL 1789")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Year != 1789 || p.Month != 7 || p.Day != 14 {
		t.Errorf("got %d-%d-%d, want 1789-7-14", p.Year, p.Month, p.Day)
	}
	if p.Precision() != 3 {
		t.Errorf("precision = %d, want 3", p.Precision())
	}
	if p.Normalized() != "1789-07-14" {
		t.Errorf("normalized = %q", p.Normalized())
	}
}

func TestParseMonthYear(t *testing.T) {
	p, ok := Parse("JUL 1789")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Year != 1789 || p.Month != 7 || p.Day != 0 {
		t.Errorf("got %d-%d-%d, want 1789-7-0", p.Year, p.Month, p.Day)
	}
	if p.Normalized() != "1789-07" {
		t.Errorf("normalized = %q", p.Normalized())
	}
}

func TestParseYearOnly(t *testing.T) {
	p, ok := Parse("1789")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Year != 1789 || p.Precision() != 1 {
		t.Errorf("got year=%d precision=%d", p.Year, p.Precision())
	}
	if p.Normalized() != "1789" {
		t.Errorf("normalized = %q", p.Normalized())
	}
}

func TestParseISO(t *testing.T) {
	p, ok := Parse("1789-07-14")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Year != 1789 || p.Month != 7 || p.Day != 14 {
		t.Errorf("got %d-%d-%d, want 1789-7-14", p.Year, p.Month, p.Day)
	}
}

func TestParseModifier(t *testing.T) {
	p, ok := Parse("ABT 1850")
	if !ok {
		t.Fatal("parse failed")
	}
	if p.Modifier != "ABT" {
		t.Errorf("modifier = %q, want ABT", p.Modifier)
	}
	if p.Year != 1850 {
		t.Errorf("year = %d, want 1850", p.Year)
	}
}

func TestParseNoYear(t *testing.T) {
	for _, raw := range []string{"", "JUL", "14 JUL", "unknown", "99"} {
		if _, ok := Parse(raw); ok {
			t.Errorf("Parse(%q) succeeded, expected failure", raw)
		}
	}
}

func TestYear(t *testing.T) {
	year, ok := Year("BEF 1742")
	if !ok || year != 1742 {
		t.Errorf("Year = %d, %v; want 1742, true", year, ok)
	}
}

func TestScanYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"christened 1688 in the parish", 1688, true},
		{"1923", 1923, true},
		{"no digits here", 0, false},
		{"serial 123456", 0, false},
		{"0000", 0, false},
	}
	for _, c := range cases {
		got, ok := ScanYear(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ScanYear(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

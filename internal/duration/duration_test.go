package duration

import (
	"errors"
	"testing"
)

// ============================================================
// Parse
// ============================================================

func TestParseSingleUnits(t *testing.T) {
	cases := map[string]int{
		"45s": 45,
		"5m":  300,
		"2h":  7200,
		"1d":  86400,
	}
	for input, want := range cases {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestParseCombined(t *testing.T) {
	got, err := Parse("2h 30m")
	if err != nil {
		t.Fatal(err)
	}
	if got != 9000 {
		t.Fatalf("Parse(\"2h 30m\") = %d, want 9000", got)
	}
}

func TestParseAnyOrderAndDuplicates(t *testing.T) {
	got, err := Parse("30m 1h 30m")
	if err != nil {
		t.Fatal(err)
	}
	if got != 7200 {
		t.Fatalf("got %d, want 7200", got)
	}

	got, err = Parse("10s 1d")
	if err != nil {
		t.Fatal(err)
	}
	if got != 86410 {
		t.Fatalf("got %d, want 86410", got)
	}
}

func TestParseNoSeparator(t *testing.T) {
	got, err := Parse("1h30m")
	if err != nil {
		t.Fatal(err)
	}
	if got != 5400 {
		t.Fatalf("got %d, want 5400", got)
	}
}

func TestParseSurroundingWhitespace(t *testing.T) {
	got, err := Parse("  15m ")
	if err != nil {
		t.Fatal(err)
	}
	if got != 900 {
		t.Fatalf("got %d, want 900", got)
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",       // empty
		"   ",    // whitespace only
		"30x",    // unknown suffix
		"5 m",    // whitespace interrupts digit run
		"90",     // trailing digits without suffix
		"1h 30",  // trailing digits after a valid token
		"h",      // suffix without value
		"1h m",   // suffix without value mid-string
	}
	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Fatalf("Parse(%q) should fail", input)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Parse(%q) error is %T, want *ParseError", input, err)
		}
	}
}

// ============================================================
// Format
// ============================================================

func TestFormatKnownValues(t *testing.T) {
	cases := map[int]string{
		0:     "0s",
		45:    "45s",
		90:    "1m 30s",
		60:    "1m",
		3600:  "1h",
		3661:  "1h 1m 1s",
		90061: "1d 1h 1m 1s",
		86400: "1d",
	}
	for seconds, want := range cases {
		got, err := Format(seconds)
		if err != nil {
			t.Fatalf("Format(%d): %v", seconds, err)
		}
		if got != want {
			t.Fatalf("Format(%d) = %q, want %q", seconds, got, want)
		}
	}
}

func TestFormatNegative(t *testing.T) {
	_, err := Format(-1)
	if !errors.Is(err, ErrNegative) {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestMustFormatFallsBack(t *testing.T) {
	if got := MustFormat(-5); got != "0s" {
		t.Fatalf("MustFormat(-5) = %q, want \"0s\"", got)
	}
	if got := MustFormat(61); got != "1m 1s" {
		t.Fatalf("MustFormat(61) = %q", got)
	}
}

// ============================================================
// Round trip
// ============================================================

func TestRoundTrip(t *testing.T) {
	values := []int{0, 1, 59, 60, 61, 3599, 3600, 3661, 86399, 86400, 90061, 123456789}
	for _, s := range values {
		text, err := Format(s)
		if err != nil {
			t.Fatalf("Format(%d): %v", s, err)
		}
		back, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(Format(%d)) = Parse(%q): %v", s, text, err)
		}
		if back != s {
			t.Fatalf("round trip %d -> %q -> %d", s, text, back)
		}
	}
}

func TestParseIsLenientButFormatNormalizes(t *testing.T) {
	got, err := Parse("90m")
	if err != nil {
		t.Fatal(err)
	}
	if got != 5400 {
		t.Fatalf("Parse(\"90m\") = %d, want 5400", got)
	}
	text, _ := Format(5400)
	if text != "1h 30m" {
		t.Fatalf("Format(5400) = %q, want \"1h 30m\"", text)
	}
}

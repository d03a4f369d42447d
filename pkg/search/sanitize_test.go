// ABOUTME: Tests for query input sanitization
// ABOUTME: Verifies syntax-character removal and whitespace collapsing

package search

import "testing"

func TestSanitizePassesPlainText(t *testing.T) {
	if got := Sanitize("digital input module"); got != "digital input module" {
		t.Errorf("Plain text altered: %q", got)
	}
}

func TestSanitizeStripsQuerySyntax(t *testing.T) {
	cases := map[string]string{
		`motor +control`:        "motor control",
		`a AND (b OR c)`:        "a AND b OR c",
		`path\to\file`:          "path to file",
		`"exact phrase"`:        "exact phrase",
		`wild*card?`:            "wild card",
		`field:value`:           "field value",
		`range [1 TO 5]`:        "range 1 TO 5",
		`boost^2 fuzzy~1`:       "boost 2 fuzzy 1",
		`x > y < z ! { } | & =`: "x y z",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSanitizeDegenerateInput(t *testing.T) {
	for _, in := range []string{"", "   ", `+-=&|><!(){}[]^"~*?:\/`, " \t\n "} {
		if got := Sanitize(in); got != "" {
			t.Errorf("Sanitize(%q): expected empty, got %q", in, got)
		}
	}
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	if got := Sanitize("  motor   \t control \n "); got != "motor control" {
		t.Errorf("Expected collapsed output, got %q", got)
	}
}

func TestSanitizeKeepsUnicode(t *testing.T) {
	if got := Sanitize("Stellgröße Ölmotor"); got != "Stellgröße Ölmotor" {
		t.Errorf("Unicode input altered: %q", got)
	}
}

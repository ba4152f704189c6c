package sanitizer

import (
	"strings"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing", "  42 Elm Street  ", "42 Elm Street"},
		{"internal run", "42    Elm\t\tStreet", "42 Elm Street"},
		{"newlines collapse", "42 Elm\nStreet\nApt 3", "42 Elm Street Apt 3"},
		{"already clean", "42 Elm Street", "42 Elm Street"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TrimAndNormalize(tc.input); got != tc.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"clean input unchanged", "gate code 4711", "gate code 4711"},
		{"whitespace collapsed", "gate   code\t4711", "gate code 4711"},
		{"long notes kept intact", strings.Repeat("x", 600), strings.Repeat("x", 600)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeNotes(tc.input); got != tc.want {
				t.Errorf("NormalizeNotes(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizePhone_PassThrough(t *testing.T) {
	// Unparseable input comes back trimmed, not emptied; the validator's
	// loose format check decides whether to reject it.
	got := NormalizePhone("  not-a-phone  ")
	if got != "not-a-phone" {
		t.Errorf("expected trimmed pass-through, got %q", got)
	}

	if got := NormalizePhone(""); got != "" {
		t.Errorf("expected empty result for empty input, got %q", got)
	}
}

func TestNormalizePhone_E164(t *testing.T) {
	got := NormalizePhone("+1 212 555 0123")
	if got != "+12125550123" {
		t.Errorf("expected E.164 formatting, got %q", got)
	}
}

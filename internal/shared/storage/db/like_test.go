package db

import "testing"

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"inv":      `%inv%`,
		"50%":      `%50\%%`,
		"a_b":      `%a\_b%`,
		`c:\temp`:  `%c:\\temp%`,
		"(q1).*?":  `%(q1).*?%`,
	}
	for in, want := range tests {
		if got := LikePattern(in); got != want {
			t.Fatalf("LikePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

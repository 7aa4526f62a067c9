package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "invoice.pdf", want: "invoice.pdf"},
		{in: "  reports/q1.pdf ", want: "reports_q1.pdf"},
		{in: `a\b.pdf`, want: "a_b.pdf"},
		{in: "line\nbreak.pdf", want: "linebreak.pdf"},
		{in: "../etc/passwd", want: ".._etc_passwd"},
		{in: "invoice..backup.pdf", want: "invoice..backup.pdf"},
		{in: "Q1 report...pdf", want: "Q1 report...pdf"},
		{in: "..", wantErr: true},
		{in: " . ", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRandomHexLength(t *testing.T) {
	got, err := RandomHex(24)
	if err != nil {
		t.Fatalf("RandomHex: %v", err)
	}
	if len(got) != 48 {
		t.Fatalf("expected 48 hex characters, got %d", len(got))
	}
}

func TestSanitizeText(t *testing.T) {
	if got := SanitizeText("  Reports\t2024 \x00"); got != "Reports2024" {
		t.Fatalf("SanitizeText = %q", got)
	}
	if got := SanitizeText(" \n "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

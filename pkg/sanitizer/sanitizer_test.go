package sanitizer

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and collapses", "  airport   shuttle  ", "airport shuttle"},
		{"strips control chars", "spa\x00 access\x1f", "spa access"},
		{"empty stays empty", "", ""},
		{"tabs collapse", "late\tcheckout", "late checkout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeLabel(tt.input); got != tt.want {
				t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFreeText_PreservesNewlines(t *testing.T) {
	input := "  great stay\nwould book again  "
	want := "great stay\nwould book again"
	if got := SanitizeFreeText(input); got != want {
		t.Errorf("SanitizeFreeText(%q) = %q, want %q", input, got, want)
	}
}

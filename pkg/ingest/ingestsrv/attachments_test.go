package ingestsrv

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my photo (1).jpg", "my_photo__1_.jpg"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"", "unnamed"},
		{"ümlaut.png", "_mlaut.png"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 80) + ".jpg"
	got := sanitizeFilename(long)
	if len(got) != 64 {
		t.Fatalf("expected 64 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".jpg") {
		t.Errorf("truncation should keep the extension, got %q", got)
	}
}

package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "scans/letter.pdf", want: "scans/letter.pdf"},
		{name: "simple prefix", prefix: "archive", key: "scans/letter.pdf", want: "archive/scans/letter.pdf"},
		{name: "prefix trailing slash", prefix: "archive/", key: "scans/letter.pdf", want: "archive/scans/letter.pdf"},
		{name: "prefix and key slashes", prefix: "/archive/", key: "/scans/letter.pdf", want: "archive/scans/letter.pdf"},
		{name: "nested prefix", prefix: "archive/1943", key: "letter.pdf", want: "archive/1943/letter.pdf"},
		{name: "key only slashes", prefix: "", key: "///", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

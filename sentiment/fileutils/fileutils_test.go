package fileutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"Sure! {\"a\":1} hope that helps", `{"a":1}`, true},
		{`{"a":{"b":2}} trailing } brace`, `{"a":{"b":2}} trailing }`, true},
		{"no json here", "", false},
		{"} backwards {", "", false},
		{"", "", false},
		{"{ unterminated", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractJSONObject(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("ExtractJSONObject(%q)=(%q,%v), want (%q,%v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestWriteJSONFileAtomic_PreservesNonASCIIAndHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out", "records.json")

	v := []map[string]string{{"tweet": "Nestlé <3 & café"}}
	if err := WriteJSONFileAtomic(path, v, true); err != nil {
		t.Fatalf("WriteJSONFileAtomic: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Nestlé <3 & café") {
		t.Fatalf("content=%q, want raw UTF-8 and unescaped HTML", s)
	}
	if !strings.Contains(s, "\n  {\n    \"tweet\"") {
		t.Fatalf("content=%q, want 2-space indentation", s)
	}
	if !strings.HasSuffix(s, "]\n") {
		t.Fatalf("content=%q, want single trailing newline", s)
	}

	ents, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(ents) != 1 {
		t.Fatalf("entries=%d, want only the final file (temp file cleaned up)", len(ents))
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  abcdef  ", 3); got != "abc…" {
		t.Fatalf("Truncate=%q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate=%q", got)
	}
	if got := SanitizeNewlines("a\r\nb\rc\nd"); got != `a\nb\nc\nd` {
		t.Fatalf("SanitizeNewlines=%q", got)
	}
	if !FileExists(t.TempDir()) {
		t.Fatalf("FileExists(tempdir)=false")
	}
}

package present

import (
	"os"
	"path/filepath"
	"testing"

	"memo-cli/internal/memo"
)

func TestExportActive(t *testing.T) {
	snap := snapshot(1, memo.ModeViewing)
	snap.Memos[1].Body = "line 1\r\nline 2\n"

	e, err := ExportActive(snap)
	if err != nil {
		t.Fatalf("ExportActive: %v", err)
	}
	if e.Name != "Beta.md" {
		t.Fatalf("expected Beta.md, got %q", e.Name)
	}
	if e.MIMEType != "application/octet-stream" {
		t.Fatalf("unexpected mime type %q", e.MIMEType)
	}
	if string(e.Data) != "line 1\r\nline 2\n" {
		t.Fatalf("body must be exported verbatim; got %q", string(e.Data))
	}

	if _, err := ExportActive(memo.Snapshot{}); err == nil {
		t.Fatalf("expected error for empty snapshot")
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"notes.md":       "notes.md",
		"a/b.md":         "a_b.md",
		`..\evil.md`:     `.._evil.md`,
		".md":            "untitled.md",
		"...md":          "untitled.md",
		"new memo 1.md":  "new memo 1.md",
		"日本語メモ.md":       "日本語メモ.md",
		"../../etc/x.md": ".._.._etc_x.md",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Fatalf("SafeFileName(%q): got %q want %q", in, got, want)
		}
	}
}

func TestWriteExport_StaysInDir(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteExport(dir, Export{Name: "../up.md", MIMEType: ExportMIMEType, Data: []byte("# hi")})
	if err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected export inside %s, got %s", dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(b) != "# hi" {
		t.Fatalf("unexpected content %q", string(b))
	}
}

package notes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("  Patient presents for follow-up.\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got != "Patient presents for follow-up." {
		t.Errorf("ReadFile = %q", got)
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestFormat(t *testing.T) {
	in := `Line one\nLine two\tindented\r`
	want := "Line one\nLine two\tindented"
	if got := Format(in); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}

	if got := Format(""); got != "" {
		t.Errorf("Format(\"\") = %q, want empty", got)
	}
}

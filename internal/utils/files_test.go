package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.yaml")
	if err := SafeWriteFile(path, []byte("user_id: x\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "user_id: x\n" {
		t.Fatalf("unexpected content: %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should be gone, stat err=%v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandHome("~/.docchat/identity.yaml")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if got != filepath.Join(home, ".docchat", "identity.yaml") {
		t.Fatalf("unexpected path: %s", got)
	}
	if got, _ := ExpandHome("/tmp/x/../y"); got != "/tmp/y" {
		t.Fatalf("absolute path should be cleaned, got %s", got)
	}
}

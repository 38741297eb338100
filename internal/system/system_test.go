package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFindLatestPDF(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.pdf")
	recent := filepath.Join(dir, "Recent.PDF")
	for _, p := range []string{old, recent, filepath.Join(dir, "notes.txt")} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := FindLatestPDF(dir)
	if err != nil {
		t.Fatalf("FindLatestPDF failed: %v", err)
	}
	if got != recent {
		t.Errorf("Expected %s, got %s", recent, got)
	}
}

func TestFindLatestPDFEmpty(t *testing.T) {
	if _, err := FindLatestPDF(t.TempDir()); err == nil {
		t.Errorf("Expected error for a folder without PDFs")
	}
}

func TestCurrentUser(t *testing.T) {
	name := CurrentUser()
	if name == "" {
		t.Fatalf("Expected a user name")
	}
	if strings.Contains(name, `\`) {
		t.Errorf("Expected domain to be stripped, got %s", name)
	}
}

func TestCurrentUsage(t *testing.T) {
	u, err := CurrentUsage()
	if err != nil {
		t.Skipf("process information unavailable: %v", err)
	}
	if u.RSS == 0 {
		t.Errorf("Expected non-zero RSS")
	}
	t.Logf("%s", u)
}

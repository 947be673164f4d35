package images

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

// Smallest valid PNG header; enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testStoreDir(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func TestSaveAndResolve(t *testing.T) {
	s := testStoreDir(t)

	ref, err := s.Save(bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ref.ID == "" {
		t.Fatal("Expected a generated id")
	}
	if !strings.HasPrefix(ref.Src, "/media/") || !strings.HasSuffix(ref.Src, ".png") {
		t.Fatalf("Unexpected src: %s", ref.Src)
	}

	name := strings.TrimPrefix(ref.Src, "/media/")
	p, err := s.Path(name)
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("Stored file missing: %v", err)
	}
}

func TestSaveRejectsNonImages(t *testing.T) {
	s := testStoreDir(t)

	_, err := s.Save(strings.NewReader("#!/bin/sh\nrm -rf /\n"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType, got %v", err)
	}

	// SVG sniffs as XML, never as an image type.
	_, err = s.Save(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType for svg, got %v", err)
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	s := testStoreDir(t)

	big := append(append([]byte{}, pngBytes...), make([]byte, MaxUploadSize)...)
	_, err := s.Save(bytes.NewReader(big))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	s := testStoreDir(t)

	for _, name := range []string{"../etc/passwd", "a/../../b.png", "/etc/passwd"} {
		if _, err := s.Path(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound for %q, got %v", name, err)
		}
	}
}

func TestDelete(t *testing.T) {
	s := testStoreDir(t)

	ref, err := s.Save(bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	name := strings.TrimPrefix(ref.Src, "/media/")
	if err := s.Delete(name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Path(name); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
}

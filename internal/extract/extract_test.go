package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>High fever since Monday.</w:t></w:r></w:p><w:p><w:r><w:t>Headache too.</w:t></w:r></w:p></w:body>
</w:document>`

func TestTextDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	for _, mime := range []string{MimeDOCX, "application/zip", ""} {
		got, err := Text(context.Background(), data, mime, "notes.docx")
		if err != nil {
			t.Fatalf("Text(%q): %v", mime, err)
		}
		if !strings.Contains(got, "High fever since Monday.") || !strings.Contains(got, "Headache too.") {
			t.Fatalf("Text(%q) = %q", mime, got)
		}
	}
}

func TestTextPlain(t *testing.T) {
	got, err := Text(context.Background(), []byte("  I feel dizzy \n"), "text/plain; charset=utf-8", "notes.txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "I feel dizzy" {
		t.Fatalf("Text = %q", got)
	}
}

func TestTextPlainByExtension(t *testing.T) {
	got, err := Text(context.Background(), []byte("cough"), "application/octet-stream", "notes.txt")
	if err != nil || got != "cough" {
		t.Fatalf("Text = %q, %v", got, err)
	}
}

func TestTextRealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := Text(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestTextCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, []byte("fever"), MimePlain, "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	xml := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		body + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(xml)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_Docx(t *testing.T) {
	data := buildDocx(t, "Dear Margaret, the regiment moves at dawn.")

	text, err := ExtractTextFromBytes(context.Background(), data,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "letter.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(text, "regiment moves at dawn") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, "Field report, third company.")

	if _, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "report.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_PlainTextPassthrough(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(),
		[]byte("  21 March 1916. Clear skies over the ridge.\n"), "text/plain", "diary.txt")
	if err != nil {
		t.Fatalf("extract plain text: %v", err)
	}
	if text != "21 March 1916. Clear skies over the ridge." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_UnknownMimeUTF8Passes(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(),
		[]byte("Inventory: 40 rifles, 12 crates"), "application/octet-stream", "list.dat")
	if err != nil {
		t.Fatalf("extract unknown mime: %v", err)
	}
	if !strings.Contains(text, "40 rifles") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_BinaryRejected(t *testing.T) {
	if _, err := ExtractTextFromBytes(context.Background(),
		[]byte{0x00, 0x01, 0xff, 0xfe}, "application/octet-stream", "blob.bin"); err == nil {
		t.Fatal("expected error for binary payload")
	}
}

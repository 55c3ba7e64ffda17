package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Annual revenue grew steadily.</w:t></w:r></w:p>
    <w:p><w:r><w:t>The team shipped on time.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": docxBody})
	text, err := Extract(data, "docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Annual revenue grew steadily.") {
		t.Fatalf("missing paragraph text: %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Fatalf("expected newline between paragraphs: %q", text)
	}
}

func TestExtractPPTXOrdersSlides(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}
	// slide10 must sort after slide2, not between slide1 and slide2.
	data := buildZip(t, map[string]string{
		"ppt/presentation.xml":   "<p:presentation/>",
		"ppt/slides/slide10.xml": slide("third"),
		"ppt/slides/slide1.xml":  slide("first"),
		"ppt/slides/slide2.xml":  slide("second"),
		"ppt/media/image1.png":   "\x89PNG\r\n",
	})
	text, err := Extract(data, "pptx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []string{"first", "second", "third"}
	last := -1
	for _, w := range wantOrder {
		idx := strings.Index(text, w)
		if idx < 0 {
			t.Fatalf("missing slide text %q in %q", w, text)
		}
		if idx < last {
			t.Fatalf("slide text out of order: %q", text)
		}
		last = idx
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract([]byte("plain words"), "txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractCorruptInputs(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		format string
	}{
		{"docx not a zip", []byte("not a zip at all"), "docx"},
		{"docx missing part", buildZip(t, map[string]string{"other.xml": "<x/>"}), "docx"},
		{"pptx no slides", buildZip(t, map[string]string{"ppt/presentation.xml": "<p/>"}), "pptx"},
		{"pdf garbage", []byte("%PDF-1.4 then garbage"), "pdf"},
		{"empty docx", nil, "docx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.data, tc.format)
			if !errors.Is(err, ErrCorruptDocument) {
				t.Fatalf("expected ErrCorruptDocument, got %v", err)
			}
			if errors.Is(err, ErrUnsupportedFormat) {
				t.Fatal("corrupt must not be reported as unsupported")
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	docx := buildZip(t, map[string]string{"word/document.xml": docxBody})
	pptx := buildZip(t, map[string]string{"ppt/presentation.xml": "<p/>"})

	cases := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{"declared pdf", "application/pdf", "a.pdf", nil, FormatPDF},
		{"declared docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "a.docx", nil, FormatDOCX},
		{"zip sniffed docx", "application/zip", "upload.bin", docx, FormatDOCX},
		{"zip sniffed pptx", "application/octet-stream", "deck", pptx, FormatPPTX},
		{"pdf magic", "", "blob", []byte("%PDF-1.7\n"), FormatPDF},
		{"extension fallback", "application/zip", "deck.pptx", []byte("xx"), FormatPPTX},
		{"plain text", "text/plain", "notes.txt", []byte("hi"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFormat(tc.mime, tc.fileName, tc.data); got != tc.want {
				t.Fatalf("DetectFormat=%q want %q", got, tc.want)
			}
		})
	}
}

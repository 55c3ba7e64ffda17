package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Declared document formats the extractor understands.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatPPTX = "pptx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Extract converts raw document bytes plus a declared format into plain text.
// It performs no I/O and persists nothing. Embedded binary parts (images,
// media) are skipped. Unknown formats fail with ErrUnsupportedFormat;
// structurally broken files fail with ErrCorruptDocument.
func Extract(data []byte, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatPPTX:
		return extractPPTX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DetectFormat maps a declared mime type plus filename plus payload to one of
// the extractor's formats. Empty string means unsupported. Generic zip mimes
// are resolved by looking inside the archive for the OOXML marker part.
func DetectFormat(mimeType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case mimePDF:
		return FormatPDF
	case mimeDOCX:
		return FormatDOCX
	case mimePPTX:
		return FormatPPTX
	}
	if clean == "application/zip" || clean == "application/octet-stream" || clean == "" {
		if bytes.HasPrefix(data, []byte("%PDF-")) {
			return FormatPDF
		}
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".pdf":
			return FormatPDF
		case ".docx":
			return FormatDOCX
		case ".pptx":
			return FormatPPTX
		}
	}
	return ""
}

// MimeType returns the canonical mime type for a supported format.
func MimeType(format string) string {
	switch format {
	case FormatPDF:
		return mimePDF
	case FormatDOCX:
		return mimeDOCX
	case FormatPPTX:
		return mimePPTX
	default:
		return "application/octet-stream"
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed xref tables; treat that the
	// same as a parse error.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: pdf parse panic: %v", ErrCorruptDocument, rec)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if zipName(f) == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: word/document.xml not found", ErrCorruptDocument)
	}

	raw, err := readZipFile(docFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return stripOOXML(raw)
}

func extractPPTX(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		name := zipName(f)
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
		num, convErr := strconv.Atoi(numStr)
		if convErr != nil {
			continue
		}
		slides = append(slides, slide{num: num, file: f})
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: no slides found", ErrCorruptDocument)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var out strings.Builder
	for i, s := range slides {
		raw, err := readZipFile(s.file)
		if err != nil {
			return "", fmt.Errorf("%w: slide %d: %v", ErrCorruptDocument, s.num, err)
		}
		text, err := stripOOXML(raw)
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.num, err)
		}
		if i > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(text)
	}
	return strings.TrimSpace(out.String()), nil
}

// stripOOXML walks the XML token stream accumulating character data. Both
// WordprocessingML and DrawingML close their paragraph elements with a local
// name of "p", so one walk serves DOCX bodies and PPTX slides alike. A decode
// error after text has been gathered is tolerated (embedded junk is skipped);
// an error before any text means the part is unreadable.
func stripOOXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if buf.Len() > 0 {
				break
			}
			return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func openZip(data []byte) (*zip.Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrCorruptDocument)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return zr, nil
}

func zipName(f *zip.File) string {
	return strings.ReplaceAll(f.Name, "\\", "/")
}

func readZipFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch zipName(f) {
		case "word/document.xml":
			return FormatDOCX
		case "ppt/presentation.xml":
			return FormatPPTX
		case "xl/workbook.xml":
			// Spreadsheets are recognized so the caller can name them in the
			// rejection, but they are not an extractable format.
			return ""
		}
	}
	return ""
}

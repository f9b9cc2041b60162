package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbility/taxassist/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// IsPDF reports whether an upload is a PDF, by MIME type or extension.
func IsPDF(up document.Upload) bool {
	if strings.EqualFold(up.MIME, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(up.Name), ".pdf")
}

// IsImage reports whether an upload carries an image MIME type.
func IsImage(up document.Upload) bool {
	return strings.HasPrefix(strings.ToLower(up.MIME), "image/")
}

// PDFText extracts the text layer from a PDF. ledongthuc/pdf needs a
// ReadSeeker with a known size, so the bytes go through a temp file.
func PDFText(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "taxassist-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", fmt.Errorf("pdf has no extractable text layer")
	}
	return buf.String(), nil
}

package extract

import (
	"encoding/base64"
	"fmt"

	"github.com/kbility/taxassist/internal/document"
)

// PDFIconPreview is the static placeholder shown for documents that cannot
// be rendered inline.
const PDFIconPreview = "/images/pdf-icon.png"

// BuildPreview returns the preview reference for one upload: images become
// inline data URLs, PDFs (no raster renderer in this stack) fall back to a
// static icon.
func BuildPreview(up document.Upload) string {
	if IsImage(up) {
		return fmt.Sprintf("data:%s;base64,%s", up.MIME, base64.StdEncoding.EncodeToString(up.Data))
	}
	return PDFIconPreview
}

// Previews builds one preview per upload, in input order.
func Previews(ups []document.Upload) []string {
	out := make([]string, len(ups))
	for i, up := range ups {
		out[i] = BuildPreview(up)
	}
	return out
}

package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kbility/taxassist/internal/document"
)

// ParseDocument decodes the model's JSON reply into a TaxDocument.
func ParseDocument(text string) (document.TaxDocument, error) {
	var doc document.TaxDocument
	text = stripCodeBlock(text)
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return doc, fmt.Errorf("parse document json: %w (raw: %s)", err, truncate(text, 200))
	}
	switch doc.DocumentType {
	case document.TypeW2, document.Type1099NEC:
	case "":
		return doc, fmt.Errorf("model reply is missing document_type")
	default:
		return doc, fmt.Errorf("unrecognized document type %q", doc.DocumentType)
	}
	return doc, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

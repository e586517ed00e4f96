// Package ocr turns input documents into plain text for extraction.
// Plain-text files pass through untouched; PDFs go through a text
// extractor chosen by configuration.
package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor for the given provider.
func NewExtractor(provider, pdfToTextPath, mistralKey, mistralModel string) (Extractor, error) {
	switch provider {
	case "local", "":
		return NewPdfToText(pdfToTextPath), nil
	case "mistral":
		if mistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(mistralKey, mistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", provider)
	}
}

// LoadDocument reads the document at path as plain text. Files with a
// .pdf extension are routed through the extractor; everything else is
// read verbatim.
func LoadDocument(ctx context.Context, ex Extractor, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if ex == nil {
			return "", eris.Errorf("ocr: no extractor configured for PDF %s", path)
		}
		text, err := ex.ExtractText(ctx, path)
		if err != nil {
			return "", err
		}
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: read document %s", path)
	}
	return string(data), nil
}

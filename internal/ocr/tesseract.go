package ocr

import (
	"github.com/otiai10/gosseract/v2"

	"github.com/spherical-ai/labvoice/internal/domain"
)

// Tesseract implements Engine using the tesseract bindings.
type Tesseract struct {
	language    string
	tessdataDir string
}

// TesseractOption configures a Tesseract engine.
type TesseractOption func(*Tesseract)

// WithLanguage sets the recognition language (default "eng").
func WithLanguage(lang string) TesseractOption {
	return func(t *Tesseract) { t.language = lang }
}

// WithTessdataDir points tesseract at a non-default tessdata directory.
func WithTessdataDir(dir string) TesseractOption {
	return func(t *Tesseract) { t.tessdataDir = dir }
}

// NewTesseract creates a tesseract-backed OCR engine.
func NewTesseract(opts ...TesseractOption) *Tesseract {
	t := &Tesseract{language: "eng"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Recognize runs tesseract over the image and returns the recognized text.
// A fresh client per page keeps recognition state isolated between pages.
func (t *Tesseract) Recognize(imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataDir != "" {
		if err := client.SetTessdataPrefix(t.tessdataDir); err != nil {
			return "", domain.OCRError("failed to set tessdata directory", err)
		}
	}
	if err := client.SetLanguage(t.language); err != nil {
		return "", domain.OCRError("failed to set OCR language", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", domain.OCRError("failed to load page image", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", domain.OCRError("text recognition failed", err)
	}
	return text, nil
}

// Package pdf rasterizes uploaded lab reports into page images for OCR.
package pdf

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/ocr"
)

// jpegQuality balances file size against OCR accuracy for rendered pages.
const jpegQuality = 95

// Converter renders PDF pages and feeds them through an OCR engine. Safe
// for concurrent use; each extraction owns its own scratch directory.
type Converter struct {
	dpi    int
	engine ocr.Engine
}

// NewConverter creates a converter rendering at the given DPI. 300 DPI keeps
// OCR accuracy independent of the source PDF's native resolution.
func NewConverter(dpi int, engine ocr.Engine) *Converter {
	return &Converter{dpi: dpi, engine: engine}
}

// ExtractText renders every page of the PDF and concatenates the per-page
// OCR output, each page prefixed with a "--- Page N ---" marker so the
// prompt text retains page provenance. Blank pages keep their marker.
func (c *Converter) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	validator := NewValidator()
	if err := validator.ValidatePDFPath(pdfPath); err != nil {
		return "", err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", domain.IngestionError("failed to open PDF", err)
	}
	defer doc.Close()

	tempDir, err := os.MkdirTemp("", "labvoice-pages-*")
	if err != nil {
		return "", domain.IOError("failed to create temp directory", err)
	}
	defer os.RemoveAll(tempDir)

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return "", domain.IngestionError("PDF has no pages", nil)
	}

	var text strings.Builder
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, float64(c.dpi))
		if err != nil {
			return "", domain.IngestionError(fmt.Sprintf("failed to render page %d", pageNum+1), err)
		}

		imagePath := filepath.Join(tempDir, fmt.Sprintf("page_%03d.jpg", pageNum+1))
		outputFile, err := os.Create(imagePath)
		if err != nil {
			return "", domain.IOError(fmt.Sprintf("failed to create image file for page %d", pageNum+1), err)
		}

		opts := &jpeg.Options{Quality: jpegQuality}
		err = jpeg.Encode(outputFile, img, opts)
		outputFile.Close()
		if err != nil {
			return "", domain.IngestionError(fmt.Sprintf("failed to encode page %d", pageNum+1), err)
		}

		pageText, err := c.engine.Recognize(imagePath)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&text, "\n--- Page %d ---\n%s", pageNum+1, pageText)
	}

	return text.String(), nil
}

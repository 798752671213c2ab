package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/spherical-ai/labvoice/internal/domain"
)

// Validator provides input validation for uploaded PDF files.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// pdfMagic is the required header of a PDF byte stream.
const pdfMagic = "%PDF-"

// ValidatePDFPath validates that a file path points to a readable PDF. The
// uploaded temp file carries a random name, so the check reads the magic
// bytes instead of trusting an extension.
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	defer file.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := file.Read(header); err != nil || string(header) != pdfMagic {
		return domain.IngestionError("byte stream is not a valid PDF", err)
	}

	return nil
}

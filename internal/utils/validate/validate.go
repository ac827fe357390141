package validate

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/supchaser/pdftoxl/internal/utils/errs"
)

var pdfMagic = []byte("%PDF-")

func ValidateTemplateID(id models.TemplateID) error {
	for _, t := range models.Templates {
		if t == id {
			return nil
		}
	}

	return fmt.Errorf("%w: %q", errs.ErrUnknownTemplate, string(id))
}

func ValidateFileExtension(name string) error {
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return fmt.Errorf("%w: %s", errs.ErrNotPDF, name)
	}

	return nil
}

// ValidatePDF checks name, size and header of an input file. With strict set
// the document is also parsed and must expose at least one page.
func ValidatePDF(file models.InputFile, maxSize int64, strict bool) error {
	if err := ValidateFileExtension(file.Name); err != nil {
		return err
	}

	size := int64(len(file.Data))
	if size == 0 {
		return fmt.Errorf("%w: %s", errs.ErrEmptyFile, file.Name)
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %s is %d bytes (max: %d bytes)", errs.ErrFileTooLarge, file.Name, size, maxSize)
	}

	if !bytes.HasPrefix(file.Data, pdfMagic) {
		return fmt.Errorf("%w: %s has no PDF header", errs.ErrNotPDF, file.Name)
	}

	if !strict {
		return nil
	}

	r, err := pdf.NewReader(bytes.NewReader(file.Data), size)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrNotPDF, file.Name, err)
	}
	if r.NumPage() == 0 {
		return fmt.Errorf("%w: %s has no pages", errs.ErrNotPDF, file.Name)
	}

	return nil
}

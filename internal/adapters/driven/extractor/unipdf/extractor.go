// Package unipdf provides PDF text extraction using UniPDF.
package unipdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
	"github.com/custodia-labs/docq/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var licenseOnce sync.Once

// setLicense applies the UniDoc metered license key from the environment.
// Without a key, UniPDF runs in its unlicensed evaluation mode.
func setLicense() {
	licenseOnce.Do(func() {
		key := os.Getenv("UNIDOC_LICENSE_KEY")
		if key == "" {
			logger.Warn("UNIDOC_LICENSE_KEY not set, UniPDF runs unlicensed")
			return
		}
		if err := license.SetMeteredKey(key); err != nil {
			logger.Warn("failed to set UniDoc license key: %v", err)
		}
	})
}

// Extractor pulls ordered page text from PDF bytes.
type Extractor struct{}

// NewExtractor creates a new PDF text extractor.
func NewExtractor() *Extractor {
	setLicense()
	return &Extractor{}
}

// Extract returns the pages of the PDF in document order.
// Pages without extractable text (scanned images) yield empty strings;
// no OCR is attempted. Corrupt or password-protected input fails with
// domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) ([]domain.Page, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if encrypted {
		// Only an empty owner/user password can be recovered from
		ok, err := reader.Decrypt([]byte(""))
		if err != nil || !ok {
			return nil, fmt.Errorf("%w: document is password protected", domain.ErrExtractionFailed)
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	pages := make([]domain.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrExtractionFailed, i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrExtractionFailed, i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			// A page that cannot yield text is an empty page, not a failure
			logger.Debug("page %d: no extractable text: %v", i, err)
			text = ""
		}

		pages = append(pages, domain.Page{
			Number: i,
			Text:   cleanText(text),
		})
	}

	return pages, nil
}

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// cleanText normalises extracted text: collapses space runs, trims line
// edges, and squeezes blank-line runs down to one.
func cleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spaceRun.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

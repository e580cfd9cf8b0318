package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor reads label PDFs page by page.
type Extractor struct {
	runner CommandRunner
}

// New creates an extractor that shells out to pdftotext for fallback.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom fallback runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// ExtractPages returns the text of every physical page in order.
// Pages that cannot be decoded yield an empty string.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	pages, err := readPages(path)
	if err == nil {
		return pages, nil
	}
	logger.Debug("pdf: reader failed for %s: %v", path, err)

	if toolErr := CheckAvailable(); toolErr != nil || e.runner == nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out, runErr := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if runErr != nil {
		return nil, fmt.Errorf("pdftotext failed for %s: %w", path, runErr)
	}
	fallback := SplitPages(string(out))
	if len(fallback) == 0 {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return fallback, nil
}

// readPages extracts text with the pure Go reader. The reader panics on
// some malformed files, so panics become errors.
func readPages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			logger.Debug("pdf: page %d of %s has no readable text: %v", i, path, perr)
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// SplitPages splits pdftotext output into pages. The trailing form feed
// pdftotext writes after the last page does not produce an extra page.
func SplitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, pageBreak)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return "pdftotext is optional and improves extraction of unusual PDFs.\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils"
}

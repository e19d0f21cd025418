// Package export turns rendered resume HTML into a PDF.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// FileName is the name offered for downloaded exports
const FileName = "resume.pdf"

// A4 in inches
const (
	a4Width  = 8.27
	a4Height = 11.69
)

const defaultTimeout = 60 * time.Second

// Exporter converts a self-contained HTML page to PDF bytes
type Exporter interface {
	Export(ctx context.Context, html string) ([]byte, error)
}

// ExportError wraps a failed conversion
type ExportError struct {
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// ChromeExporter prints pages with a headless Chrome
type ChromeExporter struct {
	execPath string
	timeout  time.Duration
	logger   *zap.Logger
}

// Option configures a ChromeExporter
type Option func(*ChromeExporter)

// WithExecPath uses a specific Chrome binary instead of the one on PATH
func WithExecPath(path string) Option {
	return func(e *ChromeExporter) { e.execPath = path }
}

// WithTimeout bounds one export, browser start included
func WithTimeout(d time.Duration) Option {
	return func(e *ChromeExporter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the exporter logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *ChromeExporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewChromeExporter creates an exporter
func NewChromeExporter(opts ...Option) *ChromeExporter {
	e := &ChromeExporter{timeout: defaultTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// allocatorOptions returns the flags used to launch Chrome
func (e *ChromeExporter) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.execPath != "" {
		opts = append(opts, chromedp.ExecPath(e.execPath))
	}
	return opts
}

// Export writes html to a temporary file, loads it and prints an A4 PDF
// with backgrounds so accent colors survive
func (e *ChromeExporter) Export(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return nil, &ExportError{Message: "failed to create temp dir", Cause: err}
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, &ExportError{Message: "failed to write page", Cause: err}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, e.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, e.timeout)
	defer cancelRun()

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &ExportError{Message: "failed to print PDF", Cause: err}
	}

	e.logger.Debug("Exported PDF",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

var _ Exporter = (*ChromeExporter)(nil)

// Package chartcap rasterizes self-contained HTML chart documents into PNG
// bitmaps through a headless browser, at doubled pixel density for print
// fidelity. Captures are best-effort: any failure is returned to the caller,
// which places nothing and moves on.
package chartcap

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/internal/config"
)

// captureScale is the device scale factor used for print-quality output.
const captureScale = 2.0

// Capturer renders chart documents through a headless browser. Each capture
// spins up its own short-lived browser process; captures run sequentially,
// never concurrently, to bound peak memory from simultaneous canvas buffers.
type Capturer struct {
	headless bool
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a Capturer from report configuration.
func New(cfg config.ReportConfig, logger *zap.Logger) *Capturer {
	return &Capturer{
		headless: cfg.Headless,
		timeout:  cfg.CaptureTimeout,
		logger:   logger.Named("chartcap"),
	}
}

// Capture renders the HTML document at the given CSS pixel size and returns
// a PNG screenshot of the full page.
func (c *Capturer) Capture(ctx context.Context, html string, width, height int64) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.headless),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, c.timeout)
	defer cancelRun()

	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(width, height, chromedp.EmulateScale(captureScale)),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("chart capture failed: %w", err)
	}
	c.logger.Debug("chart captured",
		zap.Int64("width", width), zap.Int64("height", height), zap.Int("bytes", len(buf)))
	return buf, nil
}

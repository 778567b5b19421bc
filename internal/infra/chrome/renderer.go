// Package chrome renders HTML documents to PDF with headless Chrome.
package chrome

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"docconv/internal/config"
	"docconv/internal/infra/logging"
)

// Renderer prints HTML to PDF, through the tab pool when one is configured
// and with a throwaway browser otherwise.
type Renderer struct {
	cfg config.Config

	poolMu  sync.Mutex
	pool    *Pool
	poolErr error
}

func NewRenderer(cfg config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

func (r *Renderer) getPool() (*Pool, error) {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()

	if r.cfg.PDF.ChromePoolSize <= 0 {
		return nil, nil
	}
	if r.pool != nil {
		return r.pool, nil
	}
	pool, err := NewPool(r.cfg)
	if err != nil {
		r.poolErr = err
		return nil, err
	}
	r.pool = pool
	return r.pool, nil
}

// Stats describes the tab pool; a disabled pool reports Enabled=false.
func (r *Renderer) Stats() (Stats, error) {
	pool, err := r.getPool()
	if err != nil {
		return Stats{}, err
	}
	if pool == nil {
		return Stats{TimeoutSecs: r.cfg.PDF.TimeoutSecs, PoolSizeConf: r.cfg.PDF.ChromePoolSize}, nil
	}
	return pool.Stats(r.cfg.PDF.TimeoutSecs), nil
}

// Close releases the pool, if any.
func (r *Renderer) Close() {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Renderer) paper() config.PaperSize {
	if p, ok := r.cfg.PDF.PaperSizes[strings.ToUpper(r.cfg.PDF.DefaultPaper)]; ok {
		return p
	}
	return config.PaperSize{Width: 8.27, Height: 11.69}
}

// RenderHTML prints html on the default paper size.
func (r *Renderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	pool, err := r.getPool()
	if err != nil {
		return nil, err
	}
	paper, margin := r.paper(), r.cfg.PDF.Margin
	timeout := time.Duration(r.cfg.PDF.TimeoutSecs) * time.Second

	if pool == nil {
		// Fallback: start a new Chrome instance per request.
		return renderWithChrome(ctx, html, paper, margin, r.cfg)
	}

	runOnce := func() ([]byte, error) {
		acquireCtx, acquireCancel := context.WithTimeout(ctx, 5*time.Second)
		defer acquireCancel()

		tab, err := pool.Acquire(acquireCtx)
		if err != nil {
			return nil, err
		}

		tabCtx, cancel := context.WithTimeout(tab.Ctx, timeout)
		stop := context.AfterFunc(ctx, cancel)
		pdfBuf, renderErr := renderInExistingTab(tabCtx, html, paper, margin)
		stop()
		cancel()

		pool.Release(tab, renderErr)
		return pdfBuf, renderErr
	}

	pdfBuf, renderErr := runOnce()
	if renderErr != nil && ctx.Err() == nil && IsSessionInterrupted(renderErr) {
		logging.Warn("Chrome session interrupted; restarting pool and retrying once", "error", renderErr)
		_ = pool.Restart()
		return runOnce()
	}
	return pdfBuf, renderErr
}

// renderWithChrome starts a dedicated browser for a single render.
func renderWithChrome(ctx context.Context, html string, paper config.PaperSize, margin float64, cfg config.Config) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg, tmpDir)...)
	defer allocCancel()
	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := time.Duration(cfg.PDF.TimeoutSecs) * time.Second
	chromeCtx, cancel = context.WithTimeout(chromeCtx, timeout)
	defer cancel()

	return renderInExistingTab(chromeCtx, html, paper, margin)
}

// renderInExistingTab loads html into the tab and prints it.
func renderInExistingTab(ctx context.Context, html string, paper config.PaperSize, margin float64) ([]byte, error) {
	var pdfBuf []byte
	actions := []chromedp.Action{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForRenderReady(ctx, 50*time.Millisecond)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paper.Width).
				WithPaperHeight(paper.Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			return err
		}),
	}

	if err := chromedp.Run(ctx, actions...); err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// waitForRenderReady polls document.readyState until it is "complete".
func waitForRenderReady(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var state string
		if err := chromedp.Evaluate(`document.readyState`, &state).Do(ctx); err != nil {
			return err
		}
		if state == "complete" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

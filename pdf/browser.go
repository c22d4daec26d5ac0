package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 paper size in inches, as expected by Page.printToPDF.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// Session is the headless rendering capability the writer consumes: load an
// HTML string into an isolated context and print it to PDF bytes.
// Implementations must be safe for concurrent Render calls.
type Session interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Browser is a shared headless Chrome session. Render opens a fresh tab per
// document and disposes it afterwards, so many files can render against the
// one browser process concurrently.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// StartBrowser launches headless Chrome and blocks until the process is up,
// so an unavailable browser surfaces here instead of on the first file.
func StartBrowser(ctx context.Context, timeout time.Duration) (*Browser, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       timeout,
	}, nil
}

// Render prints the given HTML document to PDF bytes at A4 size.
func (b *Browser) Render(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, b.timeout)
	defer timeoutCancel()

	var pdfData []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return pdfData, nil
}

// Close tears down the browser process. Errors during teardown are not
// reported; a finished batch has nothing useful to do with them.
func (b *Browser) Close() error {
	b.browserCancel()
	b.allocCancel()
	return nil
}

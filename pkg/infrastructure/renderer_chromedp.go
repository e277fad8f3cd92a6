package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"resume-builder/internal/capture"
	"resume-builder/internal/readiness"
)

// A4 in inches.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
)

// ChromedpLauncher starts one headless Chrome per session.
type ChromedpLauncher struct {
	execPath string
	logger   *slog.Logger
}

func NewChromedpLauncher(execPath string, logger *slog.Logger) *ChromedpLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpLauncher{execPath: execPath, logger: logger}
}

func (l *ChromedpLauncher) Launch(ctx context.Context) (capture.Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if l.execPath != "" {
		opts = append(opts, chromedp.ExecPath(l.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			l.logger.Debug("chromedp: " + fmt.Sprintf(format, args...))
		}),
	)
	// The first Run on a fresh context starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &chromedpSession{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

type chromedpSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	once        sync.Once
}

// run executes actions on the tab, bounded by the caller's ctx.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	rctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(rctx, actions...)
}

func (s *chromedpSession) OpenPage(ctx context.Context, vp capture.Viewport) error {
	return s.run(ctx,
		emulation.SetDeviceMetricsOverride(vp.Width, vp.Height, vp.Scale, false),
		chromedp.Navigate("about:blank"),
	)
}

func (s *chromedpSession) SetContent(ctx context.Context, html string) error {
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	}))
}

func (s *chromedpSession) Navigate(ctx context.Context, url string, storage map[string]string) error {
	return s.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(storage) == 0 {
				return nil
			}
			_, err := page.AddScriptToEvaluateOnNewDocument(readiness.PreloadScript(storage)).Do(ctx)
			return err
		}),
		chromedp.Navigate(url),
	)
}

func (s *chromedpSession) ReadyState(ctx context.Context) (string, error) {
	var st string
	err := s.run(ctx, chromedp.Evaluate(readiness.StateExpression, &st))
	return st, err
}

func (s *chromedpSession) WaitImages(ctx context.Context) (string, error) {
	var failed string
	err := s.run(ctx, chromedp.Evaluate(readiness.ImagesExpression, &failed,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) },
	))
	return failed, err
}

func (s *chromedpSession) PrintPDF(ctx context.Context) ([]byte, error) {
	var pdfBuf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdfBuf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			WithPaperWidth(a4WidthIn).
			WithPaperHeight(a4HeightIn).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			Do(ctx)
		return err
	}))
	return pdfBuf, err
}

// Close shuts the tab and then the browser process. Safe to call twice.
func (s *chromedpSession) Close() error {
	var err error
	s.once.Do(func() {
		err = chromedp.Cancel(s.ctx)
		s.cancelTab()
		s.cancelAlloc()
	})
	return err
}

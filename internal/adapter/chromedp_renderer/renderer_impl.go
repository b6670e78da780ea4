package chromedp_renderer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
	"github.com/user/phishguard/pkg/utils"
	"go.uber.org/zap"
)

// liveDOMJS runs after load and reports what only the live DOM knows.
const liveDOMJS = `(() => {
	const scripts = [...document.scripts];
	let hidden = 0;
	for (const f of document.getElementsByTagName('form')) {
		const st = window.getComputedStyle(f);
		if (st.display === 'none' || st.visibility === 'hidden' || f.offsetWidth === 0 || f.offsetHeight === 0) {
			hidden++;
		}
	}
	return {
		scripts: scripts.length,
		sources: scripts.map(s => s.src || ''),
		hiddenForms: hidden,
	};
})()`

var browserCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

type liveDOM struct {
	Scripts     int      `json:"scripts"`
	Sources     []string `json:"sources"`
	HiddenForms int      `json:"hiddenForms"`
}

// ChromedpRenderer drives one headless Chrome and opens every page in a fresh
// incognito browser context.
type ChromedpRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *zap.Logger

	mu            sync.Mutex
	generation    uint64
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// NewChromedpRenderer locates a Chrome binary and prepares a renderer.
// It fails with ErrSessionUnavailable when no browser is installed.
func NewChromedpRenderer(pageLoadTimeout time.Duration, logger *zap.Logger) (*ChromedpRenderer, error) {
	path, err := findBrowser()
	if err != nil {
		return nil, err
	}
	return &ChromedpRenderer{
		execPath: path,
		timeout:  pageLoadTimeout,
		logger:   logger.Named("renderer"),
	}, nil
}

var _ repository.PageRenderer = (*ChromedpRenderer)(nil)

func findBrowser() (string, error) {
	for _, name := range browserCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no chrome binary on PATH", repository.ErrSessionUnavailable)
}

// browser returns the shared browser context and its generation, launching
// Chrome if needed.
func (r *ChromedpRenderer) browser() (context.Context, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx != nil && r.browserCtx.Err() == nil {
		return r.browserCtx, r.generation, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(utils.RandomUserAgent()),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(r.logger.Sugar().Debugf))

	r.generation++
	r.browserCtx = browserCtx
	r.cancelBrowser = cancelBrowser
	r.cancelAlloc = cancelAlloc

	// An empty Run launches the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		r.closeLocked()
		return nil, 0, fmt.Errorf("%w: %v", repository.ErrSessionUnavailable, err)
	}
	r.logger.Info("browser started", zap.String("exec_path", r.execPath), zap.Uint64("generation", r.generation))
	return browserCtx, r.generation, nil
}

// restart tears down browser generation gen so the next call launches a fresh
// one. A stale gen is ignored: another render already replaced that browser.
func (r *ChromedpRenderer) restart(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation || r.browserCtx == nil {
		return false
	}
	r.closeLocked()
	return true
}

// Close shuts the browser down.
func (r *ChromedpRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *ChromedpRenderer) closeLocked() {
	if r.cancelBrowser != nil {
		r.cancelBrowser()
	}
	if r.cancelAlloc != nil {
		r.cancelAlloc()
	}
	r.browserCtx, r.cancelBrowser, r.cancelAlloc = nil, nil, nil
}

// Render loads url in an isolated context and captures the realized DOM.
func (r *ChromedpRenderer) Render(ctx context.Context, url string) (*entity.RenderedPage, error) {
	parent, gen, err := r.browser()
	if err != nil {
		return nil, err
	}
	tabCtx, cancelTab := chromedp.NewContext(parent, chromedp.WithNewBrowserContext())
	defer cancelTab()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	// An empty Run opens the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if r.restart(gen) {
			r.logger.Warn("browser session failed, restarted browser", zap.String("url", url), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrSessionUnavailable, err)
	}

	var statusMu sync.Mutex
	statusCode := 0
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			statusMu.Lock()
			statusCode = int(e.Response.Status)
			statusMu.Unlock()
		}
	})

	taskCtx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()

	var (
		finalURL string
		html     string
		dom      liveDOM
	)
	start := time.Now()
	err = chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Evaluate(liveDOMJS, &dom),
	)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case parent.Err() != nil:
			// The shared browser went away under this tab.
			return nil, fmt.Errorf("%w: %s: %v", repository.ErrSessionUnavailable, url, err)
		case errors.Is(taskCtx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w after %s: %s", repository.ErrRenderTimeout, r.timeout, url)
		default:
			return nil, fmt.Errorf("%w: %s: %v", repository.ErrNavigationFailed, url, err)
		}
	}

	statusMu.Lock()
	defer statusMu.Unlock()
	r.logger.Debug("rendered page",
		zap.String("url", url),
		zap.String("final_url", finalURL),
		zap.Int("status", statusCode),
		zap.Duration("elapsed", elapsed),
	)

	return &entity.RenderedPage{
		URL:               url,
		FinalURL:          finalURL,
		HTML:              html,
		HTTPStatusCode:    statusCode,
		RenderTime:        elapsed,
		LiveScripts:       dom.Scripts,
		LiveScriptSources: dom.Sources,
		LiveHiddenForms:   dom.HiddenForms,
	}, nil
}

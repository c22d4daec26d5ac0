package runner

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dhcgn/eml-to-pdf/config"
	"github.com/dhcgn/eml-to-pdf/filter"
	"github.com/dhcgn/eml-to-pdf/model"
	"github.com/dhcgn/eml-to-pdf/parser"
	"github.com/dhcgn/eml-to-pdf/pdf"
	"github.com/dhcgn/eml-to-pdf/render"
	"github.com/dhcgn/eml-to-pdf/state"
	"github.com/dhcgn/eml-to-pdf/stats"
)

var ErrNoDate = errors.New("message has no usable date")

// Runner orchestrates a batch: file discovery, the shared browser session,
// the bounded pool of per-file conversion tasks and the aggregated result.
type Runner struct {
	cfg    config.Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	subsMu sync.Mutex
	subs   []chan stats.Event

	gate    chan struct{}
	filter  *filter.Filter
	tracker state.Tracker
	namer   *Namer
	result  *Result

	workWG  sync.WaitGroup
	statsWG sync.WaitGroup

	closeEventsOnce sync.Once
	since           time.Time
}

func New(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	ctx, cancel := context.WithCancel(context.Background())

	f, err := filter.New(filter.Options{
		IncludeHeader: cfg.IncludeHeader,
		IncludeBody:   cfg.IncludeBody,
		ExcludeHeader: cfg.ExcludeHeader,
		ExcludeBody:   cfg.ExcludeBody,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("filter: %w", err)
	}

	tracker, err := state.NewFileTracker(cfg.StateDir, !cfg.DryRun)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("state tracker: %w", err)
	}

	return &Runner{
		cfg:     cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		gate:    make(chan struct{}, cfg.Concurrency),
		filter:  f,
		tracker: tracker,
		namer:   NewNamer(cfg.OutputDir),
		result:  &Result{},
	}, nil
}

func (r *Runner) Config() config.Config {
	return r.cfg
}

func (r *Runner) Logger() *slog.Logger {
	return r.logger
}

func (r *Runner) Context() context.Context {
	return r.ctx
}

func (r *Runner) Result() *Result {
	return r.result
}

func (r *Runner) Tracker() state.Tracker {
	return r.tracker
}

// EmitEvent delivers the event to every subscriber. Each subscriber owns
// its own channel, so the progress bar and the stats reporter both see the
// full stream.
func (r *Runner) EmitEvent(evt stats.Event) {
	r.subsMu.Lock()
	subs := r.subs
	r.subsMu.Unlock()

	for _, ch := range subs {
		select {
		case <-r.ctx.Done():
			return
		case ch <- evt:
		}
	}
}

// SubscribeStats registers an event consumer. Subscriptions must happen
// before Start.
func (r *Runner) SubscribeStats(name string, fn func(context.Context, <-chan stats.Event) error) {
	ch := make(chan stats.Event, 128)
	r.subsMu.Lock()
	r.subs = append(r.subs, ch)
	r.subsMu.Unlock()

	r.statsWG.Add(1)
	go func() {
		defer r.statsWG.Done()
		if err := fn(r.ctx, ch); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("stats subscriber failed", "name", name, "err", err)
		}
	}()
}

// Discover lists the .eml and .msg files directly under dir in name order.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := parser.DetectFormat(entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Start runs the whole batch to completion: browser startup, one bounded
// task per file, browser teardown. Per-file errors land in the failed list
// and never abort the batch; only the inability to create the output
// directory does.
func (r *Runner) Start(files []string) error {
	r.since = time.Now()

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		r.finish(nil)
		return fmt.Errorf("create output directory: %w", err)
	}

	var session pdf.Session
	if !r.cfg.NoBrowser && !r.cfg.DryRun && len(files) > 0 {
		browser, err := pdf.StartBrowser(r.ctx, r.cfg.RenderTimeout)
		if err != nil {
			// One warning for the whole batch; every file takes the
			// text fallback from here on.
			r.logger.Warn("headless browser unavailable, all files use the text fallback", "err", err)
		} else {
			session = browser
		}
	}
	writer := pdf.NewWriter(session, r.logger)

	if len(files) == 0 {
		r.logger.Info("no .eml or .msg files found", "input", r.cfg.InputDir)
	}

	for _, file := range files {
		r.workWG.Add(1)
		go func(path string) {
			defer r.workWG.Done()
			r.gate <- struct{}{}
			defer func() { <-r.gate }()
			r.processFile(path, writer)
		}(file)
	}

	r.workWG.Wait()
	r.finish(session)

	converted, failed := r.result.Snapshot()
	r.logger.Info("batch completed",
		"duration", time.Since(r.since),
		"converted", len(converted),
		"failed", len(failed))
	return nil
}

// finish tears down the browser and state file and drains the stats
// subscribers. Teardown errors are logged and swallowed.
func (r *Runner) finish(session pdf.Session) {
	if session != nil {
		_ = session.Close()
	}
	if tracker, ok := r.tracker.(*state.FileTracker); ok {
		if err := tracker.Close(); err != nil {
			r.logger.Warn("close state file", "err", err)
		}
	}

	r.closeEventsOnce.Do(func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		for _, ch := range r.subs {
			close(ch)
		}
	})
	r.statsWG.Wait()
	r.cancel()
}

// processFile runs parse → render → pdf for a single file. Every error is
// converted into a failed-list entry here; nothing escapes to the batch.
func (r *Runner) processFile(path string, writer *pdf.Writer) {
	name := filepath.Base(path)
	r.EmitEvent(stats.Event{Stage: stats.StageParse, Type: stats.EventTypeScanned, File: name})

	raw, err := os.ReadFile(path)
	if err != nil {
		r.failFile(name, fmt.Errorf("read file: %w", err))
		return
	}

	sum := sha256.Sum256(raw)
	hash := base64.StdEncoding.EncodeToString(sum[:])
	if r.tracker.AlreadyConverted(hash) {
		r.EmitEvent(stats.Event{Stage: stats.StageParse, Type: stats.EventTypeDuplicate, File: name})
		return
	}

	msg, err := parser.ParseFile(path)
	if err != nil {
		r.failFile(name, err)
		return
	}

	if r.filter.Active() && !r.filter.Allows(msg.HeaderText(), msg.BodyText) {
		r.EmitEvent(stats.Event{Stage: stats.StageParse, Type: stats.EventTypeSkipped, File: name})
		return
	}

	if !msg.HasDate() {
		r.failFile(name, fmt.Errorf("%w (Date: %q)", ErrNoDate, msg.DateRaw))
		return
	}

	prefix := ExtractFilenamePrefix(strings.TrimSuffix(name, filepath.Ext(name)))
	outPath := r.namer.Claim(msg.Date, prefix)
	outName := filepath.Base(outPath)

	if r.cfg.DryRun {
		_ = r.tracker.MarkConverted(hash, outName)
		r.result.AddConverted(outName)
		r.EmitEvent(stats.Event{Stage: stats.StagePDF, Type: stats.EventTypeDryRun, File: name, Output: outName})
		return
	}

	var doc string
	if msg.HasHTML() {
		doc = render.StyledDocument(msg.BodyHTML, msg.Subject, msg.Sender, msg.Recipient, msg.DateRaw)
	}
	text := msg.HeaderText() + fallbackBody(msg)

	degraded, err := writer.Write(r.ctx, doc, text, outPath)
	if err != nil {
		r.failFile(name, err)
		return
	}

	if err := r.tracker.MarkConverted(hash, outName); err != nil {
		r.logger.Warn("record conversion state", "file", name, "err", err)
	}

	r.result.AddConverted(outName)
	eventType := stats.EventTypeConverted
	if degraded && msg.HasHTML() {
		// The styled document could not be rendered; the text fallback
		// produced the file. Still a success.
		eventType = stats.EventTypeDegraded
	}
	r.EmitEvent(stats.Event{Stage: stats.StagePDF, Type: eventType, File: name, Output: outName})
}

func (r *Runner) failFile(name string, err error) {
	r.result.AddFailed(name)
	r.EmitEvent(stats.Event{Stage: stats.StagePDF, Type: stats.EventTypeError, File: name, Err: err})
	r.logger.Debug("conversion failed", "file", name, "err", err)
}

// fallbackBody picks the plain-text body for the text PDF: the text part
// when present, a text rendering of the HTML part otherwise.
func fallbackBody(msg *model.NormalizedMessage) string {
	if msg.BodyText != "" {
		return msg.BodyText
	}
	if msg.HasHTML() {
		return render.ToText(msg.BodyHTML)
	}
	return ""
}

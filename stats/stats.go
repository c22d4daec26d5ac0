package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Stage string

const (
	StageParse  Stage = "parse"
	StageRender Stage = "render"
	StagePDF    Stage = "pdf"
	StageBatch  Stage = "batch"
)

type EventType string

const (
	EventTypeScanned   EventType = "scanned"
	EventTypeConverted EventType = "converted"
	EventTypeDegraded  EventType = "degraded"
	EventTypeSkipped   EventType = "skipped"
	EventTypeDuplicate EventType = "duplicate"
	EventTypeDryRun    EventType = "dry_run_converted"
	EventTypeError     EventType = "error"
)

type Event struct {
	Stage  Stage
	Type   EventType
	File   string
	Output string
	Err    error
}

type Summary struct {
	Scanned    int
	Converted  int
	Degraded   int
	Skipped    int
	Duplicates int
	DryRun     int
	Errors     int
	LastError  error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"converted", s.Converted,
		"degraded", s.Degraded,
		"skipped", s.Skipped,
		"duplicates", s.Duplicates,
		"dryRunConverted", s.DryRun,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			c.apply(evt)
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

func (c *Collector) apply(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeConverted:
		c.summary.Converted++
	case EventTypeDegraded:
		c.summary.Converted++
		c.summary.Degraded++
	case EventTypeSkipped:
		c.summary.Skipped++
	case EventTypeDuplicate:
		c.summary.Duplicates++
	case EventTypeDryRun:
		c.summary.DryRun++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

// EventStream is implemented by the runner; subscribers receive every event
// emitted during a batch.
type EventStream interface {
	SubscribeStats(name string, fn func(context.Context, <-chan Event) error)
}

type Reporter struct {
	collector *Collector
	logger    *slog.Logger
	started   time.Time
}

func NewReporter(stream EventStream, logger *slog.Logger) *Reporter {
	reporter := &Reporter{
		collector: NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}
	stream.SubscribeStats("stats-reporter", reporter.consume)
	return reporter
}

func (r *Reporter) consume(ctx context.Context, events <-chan Event) error {
	r.collector.Run(ctx, events)
	summary := r.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
	if ctx.Err() != nil {
		if r.logger != nil {
			r.logger.Debug("stats collection stopped", append(attrs, "err", ctx.Err())...)
		}
		return ctx.Err()
	}
	if r.logger != nil {
		r.logger.Info("stats summary", attrs...)
	}
	return nil
}

func (r *Reporter) Summary() Summary {
	return r.collector.Snapshot()
}

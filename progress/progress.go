package progress

import (
	"context"
	"sync"

	"github.com/pterm/pterm"

	"github.com/dhcgn/eml-to-pdf/stats"
)

// Bar manages a progress bar tracking per-file conversion events.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar if logLevel is "info".
func New(total int, logLevel string) *Bar {
	enabled := logLevel == "info" && total > 0

	bar := &Bar{
		total:   total,
		enabled: enabled,
	}

	if enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Converting emails").
			Start()

		bar.pb = pb

		pterm.Info.Printf("Email files found: %d\n", total)
		pterm.Println()
	}

	return bar
}

// Update advances the bar based on the event type.
func (b *Bar) Update(evt stats.Event) {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch evt.Type {
	case stats.EventTypeScanned:
		b.pb.Increment()
		if evt.File != "" {
			displayName := evt.File
			if len(displayName) > 40 {
				displayName = displayName[:37] + "..."
			}
			b.pb.UpdateTitle("Converting: " + displayName)
		}
	case stats.EventTypeError:
		if evt.Err != nil {
			pterm.Error.Printf("%s: %v\n", evt.File, evt.Err)
		}
	}
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}

	b.pb.Stop()
}

// Subscriber adapts the bar to the stats event stream.
func (b *Bar) Subscriber(ctx context.Context, events <-chan stats.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			b.Update(evt)
		}
	}
}

// Reporter collects summary statistics alongside the progress bar and
// prints the final converted/failed listing once the batch is done.
type Reporter struct {
	bar       *Bar
	collector *stats.Collector
}

// NewReporter wires the bar and a collector into the event stream.
func NewReporter(stream stats.EventStream, bar *Bar) *Reporter {
	reporter := &Reporter{
		bar:       bar,
		collector: stats.NewCollector(),
	}

	if bar != nil {
		stream.SubscribeStats("progress-bar", bar.Subscriber)
	}
	stream.SubscribeStats("progress-stats", reporter.collect)

	return reporter
}

func (r *Reporter) collect(ctx context.Context, events <-chan stats.Event) error {
	r.collector.Run(ctx, events)
	return nil
}

// PrintSummary renders the final batch summary: counts plus the converted
// output names and the failed input names.
func (r *Reporter) PrintSummary(converted, failed []string) {
	if r.bar != nil {
		r.bar.Stop()
	}

	summary := r.collector.Snapshot()

	pterm.Println()
	pterm.DefaultSection.Println("Summary")
	pterm.Info.Printf("Converted: %d files\n", len(converted))
	for _, name := range converted {
		pterm.Printf("  > %s\n", name)
	}
	if summary.Degraded > 0 {
		pterm.Warning.Printf("Rendered via text fallback: %d\n", summary.Degraded)
	}
	if summary.Skipped > 0 {
		pterm.Info.Printf("Skipped by filters: %d\n", summary.Skipped)
	}
	if summary.Duplicates > 0 {
		pterm.Info.Printf("Already converted (skipped): %d\n", summary.Duplicates)
	}
	if summary.DryRun > 0 {
		pterm.Info.Printf("Dry-run conversions: %d\n", summary.DryRun)
	}

	if len(failed) > 0 {
		pterm.Println()
		pterm.Warning.Printf("Failed to convert %d files:\n", len(failed))
		for _, name := range failed {
			pterm.Printf("  x %s\n", name)
		}
	}
}

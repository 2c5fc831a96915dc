// Package status provides the presentation-layer boundary (busy/status/error
// reporting) and run status persistence for bulk synchronization.
package status

import (
	"log/slog"
	"sync"
)

//go:generate mockgen -destination=mocks/mock_reporter.go -package=mocks -source=reporter.go Reporter

// Reporter is the sink for user-visible state changes. It is owned by the
// presentation layer; the executor and orchestrator only ever emit through
// it and never hold UI state themselves.
type Reporter interface {
	// SetBusy signals that a load operation started or finished
	SetBusy(busy bool)

	// SetStatus publishes a short status line
	SetStatus(text string)

	// SetError publishes a human-readable error message
	SetError(text string)

	// RefreshView asks the presentation layer to re-apply its active filter
	// so newly cached data becomes visible
	RefreshView()
}

// LogReporter emits state changes as structured log records. It is the
// reporter used by the CLI, where there is no interactive view to drive.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a Reporter backed by the given logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// SetBusy logs busy transitions at debug level
func (r *LogReporter) SetBusy(busy bool) {
	r.logger.Debug("Busy state changed", "busy", busy)
}

// SetStatus logs the status line
func (r *LogReporter) SetStatus(text string) {
	r.logger.Info(text)
}

// SetError logs the error message
func (r *LogReporter) SetError(text string) {
	r.logger.Error(text)
}

// RefreshView is a no-op for the CLI
func (*LogReporter) RefreshView() {}

// event is one state-change message flowing to the consumer
type event struct {
	kind eventKind
	busy bool
	text string
}

type eventKind int

const (
	eventBusy eventKind = iota
	eventStatus
	eventError
	eventRefresh
)

// EventReporter serializes state changes from concurrently running tasks
// through a single consumer goroutine, so the downstream sink never needs
// locks around its state. Close flushes pending events and stops the
// consumer.
type EventReporter struct {
	sink   Reporter
	events chan event

	closeOnce sync.Once
	done      chan struct{}
}

// NewEventReporter creates an EventReporter delivering to sink
func NewEventReporter(sink Reporter) *EventReporter {
	r := &EventReporter{
		sink:   sink,
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
	go r.consume()
	return r
}

func (r *EventReporter) consume() {
	defer close(r.done)
	for ev := range r.events {
		switch ev.kind {
		case eventBusy:
			r.sink.SetBusy(ev.busy)
		case eventStatus:
			r.sink.SetStatus(ev.text)
		case eventError:
			r.sink.SetError(ev.text)
		case eventRefresh:
			r.sink.RefreshView()
		}
	}
}

// SetBusy queues a busy transition
func (r *EventReporter) SetBusy(busy bool) {
	r.events <- event{kind: eventBusy, busy: busy}
}

// SetStatus queues a status line
func (r *EventReporter) SetStatus(text string) {
	r.events <- event{kind: eventStatus, text: text}
}

// SetError queues an error message
func (r *EventReporter) SetError(text string) {
	r.events <- event{kind: eventError, text: text}
}

// RefreshView queues a view refresh request
func (r *EventReporter) RefreshView() {
	r.events <- event{kind: eventRefresh}
}

// Close flushes queued events and stops the consumer. The reporter must not
// be used after Close.
func (r *EventReporter) Close() {
	r.closeOnce.Do(func() {
		close(r.events)
		<-r.done
	})
}

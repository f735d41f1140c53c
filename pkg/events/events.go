// Package events carries progress and log notifications from the sync
// worker to its controller. The worker publishes tagged events; the
// controller drains them on its own schedule, so the worker never blocks
// on rendering.
package events

// Event is a tagged notification emitted by the engine. Exactly one of
// the concrete types below is sent per Publish call.
type Event interface {
	isEvent()
}

// LogLine appends a line to the operator-visible run log.
type LogLine struct {
	Text string
}

// StatusText replaces the single-line status display.
type StatusText struct {
	Text string
}

// ProgressInit announces the total number of work items for the phase
// that is starting.
type ProgressInit struct {
	Total int
}

// ProgressSet reports that n of the announced total items are complete.
// Values are monotonically increasing within one phase.
type ProgressSet struct {
	N int
}

// Done signals the end of the run. No events follow it.
type Done struct {
	Summary any
}

func (LogLine) isEvent()      {}
func (StatusText) isEvent()   {}
func (ProgressInit) isEvent() {}
func (ProgressSet) isEvent()  {}
func (Done) isEvent()         {}

// Sink receives events from the worker.
type Sink interface {
	Publish(Event)
}

// ChannelSink delivers events over a buffered channel. Publish blocks only
// when the buffer is full, which keeps event ordering intact without
// coupling the worker to the consumer's pace under normal load.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Publish sends the event to the channel.
func (s *ChannelSink) Publish(e Event) {
	s.ch <- e
}

// Events returns the receive side for the consumer.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Close closes the channel. Call only after the worker has stopped
// publishing.
func (s *ChannelSink) Close() {
	close(s.ch)
}

// NullSink discards all events. Used in tests and quiet mode.
type NullSink struct{}

// Publish does nothing.
func (NullSink) Publish(Event) {}

package chatconnect

import (
	"errors"
	"strings"
)

// ErrAlreadyFinalized indicates Finalize was called twice on one aggregator.
// Each generation attempt needs a fresh aggregator.
var ErrAlreadyFinalized = errors.New("chatconnect: aggregator already finalized")

// Aggregator consumes the delta sequence of one generation attempt,
// accumulates the full text, and finalizes it into a completed assistant
// message on the conversation log.
//
// Concatenation order is delivery order: no reordering, no deduplication.
// When the connector short-circuits with a terminal error delta, that text
// becomes the finalized content, keeping the log consistent with what the
// user saw.
type Aggregator struct {
	store      Store
	onDelta    func(partial string)
	builder    strings.Builder
	deltaCount int
	finalized  bool
}

// NewAggregator creates an aggregator that finalizes into store. onDelta,
// when non-nil, observes the accumulated partial text after every delta;
// it is intended for live display and is called inline with consumption.
func NewAggregator(store Store, onDelta func(partial string)) *Aggregator {
	return &Aggregator{
		store:   store,
		onDelta: onDelta,
	}
}

// Add appends one delta and notifies the observer.
func (a *Aggregator) Add(delta string) {
	a.builder.WriteString(delta)
	a.deltaCount++
	if a.onDelta != nil {
		a.onDelta(a.builder.String())
	}
}

// Consume drains the delta channel, observing each partial, and returns the
// accumulated text. Consumption happens inline with production: this is a
// synchronous pull, so the producer never outruns the display.
func (a *Aggregator) Consume(deltas <-chan string) string {
	for delta := range deltas {
		a.Add(delta)
	}
	return a.builder.String()
}

// Partial returns the text accumulated so far.
func (a *Aggregator) Partial() string {
	return a.builder.String()
}

// DeltaCount returns how many deltas have been added.
func (a *Aggregator) DeltaCount() int {
	return a.deltaCount
}

// Finalize packages the accumulated text into a completed assistant message,
// appends it to the store, and returns it. It may be called once per
// aggregator; later calls fail with ErrAlreadyFinalized and do not touch
// the store.
func (a *Aggregator) Finalize() (Message, error) {
	if a.finalized {
		return Message{}, ErrAlreadyFinalized
	}
	a.finalized = true

	msg := NewMessage(a.builder.String(), RoleAssistant, TypeText)
	if a.store != nil {
		a.store.Append(msg)
	}
	return msg, nil
}

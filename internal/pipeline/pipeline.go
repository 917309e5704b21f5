// Package pipeline defines the interface the rendering core consumes from
// the media pipeline collaborator (decoder, element graph, audio sink).
// That collaborator itself — GStreamer-equivalent element wiring, codecs,
// audio rendering — is out of scope; only this seam is specified.
package pipeline

import (
	"context"
	"errors"
)

// State mirrors the three pipeline states the core cares about.
type State int

const (
	Null State = iota
	Paused
	Playing
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case Null:
		return "Null"
	case Paused:
		return "Paused"
	case Playing:
		return "Playing"
	default:
		return "Unknown"
	}
}

// MessageKind distinguishes the bus messages the core reacts to.
type MessageKind int

const (
	MessageError MessageKind = iota
	MessageEOS
	MessageAsyncDone
)

// Message is one message posted on the pipeline's bus.
type Message struct {
	Kind MessageKind
	Err  error
}

// ErrSeekFailed and ErrStateFailed are sentinel errors for a failed seek or
// state change. Position and duration queries have no sentinel: they report
// an unknown value through an ok bool, matching the "Option<ns>" the
// original query methods return.
var (
	ErrSeekFailed  = errors.New("pipeline: seek failed")
	ErrStateFailed = errors.New("pipeline: set state failed")
)

// Pipeline is the seam the rendering core (video pipe, render loop, input
// handler, orchestrator) is built against, in place of a concrete
// GStreamer-style element graph.
type Pipeline interface {
	// PostBus posts msg onto the pipeline's bus; the orchestrator drains it.
	PostBus(msg Message)
	// CurrentState returns the pipeline's current state.
	CurrentState() State
	// SetState requests a state transition.
	SetState(s State) error
	// Seek requests a seek to positionNS nanoseconds. flush requests a
	// flushing seek (discarding in-flight buffers) to key-unit granularity,
	// matching the FLUSH|KEY_UNIT seek flags the original player always
	// uses.
	Seek(ctx context.Context, positionNS int64, flush bool) error
	// QueryPosition returns the current playback position, or ok=false if
	// unknown.
	QueryPosition() (ns int64, ok bool)
	// QueryDuration returns the stream duration, or ok=false if unknown.
	QueryDuration() (ns int64, ok bool)
	// Messages returns the channel the orchestrator drains. Every [Message]
	// given to PostBus, and every message the collaborator itself generates
	// (EOS, protocol errors), arrives here.
	Messages() <-chan Message
}

// AsyncDoneWaiter is an optional capability: a [Pipeline] that can report
// when it has finished an async state change (e.g. after a seek) lets the
// input handler implement the seek-preview behavior (briefly play, wait
// for AsyncDone, return to paused). Pipelines that don't implement it
// simply skip the preview.
type AsyncDoneWaiter interface {
	WaitAsyncDone(ctx context.Context) bool
}

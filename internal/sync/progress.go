// Package sync reconciles locally cached albums and entries against the
// photo service. Every reconciliation streams progress over a bounded
// channel: an immediate local snapshot, coarse progress fractions while
// fetching, and a final snapshot in server order.
package sync

import "context"

// ProgressKind discriminates the messages on a sync stream.
type ProgressKind int

const (
	// KindSnapshot carries a complete result set. Emitted at least twice
	// per run: the local state first, the reconciled state last.
	KindSnapshot ProgressKind = iota
	// KindFraction carries completion in [0, 1).
	KindFraction
	// KindFailure terminates the stream with an error.
	KindFailure
)

// Progress is one message on a sync stream. Exactly one of Snapshot,
// Fraction, or Err is meaningful, selected by Kind.
type Progress[T any] struct {
	Kind     ProgressKind
	Snapshot T
	Fraction float64
	Err      error
}

func snapshotOf[T any](data T) Progress[T] {
	return Progress[T]{Kind: KindSnapshot, Snapshot: data}
}

func fractionOf[T any](f float64) Progress[T] {
	return Progress[T]{Kind: KindFraction, Fraction: f}
}

func failureOf[T any](err error) Progress[T] {
	return Progress[T]{Kind: KindFailure, Err: err}
}

// send delivers one message, abandoning the stream when the consumer's
// context ends first.
func send[T any](ctx context.Context, ch chan<- Progress[T], msg Progress[T]) bool {
	select {
	case ch <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

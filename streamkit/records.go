package streamkit

import (
	"encoding/json"
	"io"
)

// Records returns an iterator that decodes a one-JSON-object-per-tick stream
// into values of type T. The daemon emits such streams for container stats
// and events, one object per sampling interval, optionally followed by a
// newline, until the consumer disconnects.
//
// The iterator shares the structural boundary detection of Values and adds
// typed decoding plus consumption of the cosmetic line terminator after each
// record, so a session that runs for hours retains no more memory than the
// largest single record.
func Records[T any](in io.Reader) *RecordIterator[T] {
	return &RecordIterator[T]{Input: in}
}

// RecordIterator implements Iterator[T] over a periodic JSON record stream.
type RecordIterator[T any] struct {
	// Input is the byte source carrying one json object per tick.
	Input io.Reader

	src   *ValueIterator
	value T
	err   error
}

func (i *RecordIterator[T]) Next() bool {
	if i.err != nil {
		return false
	}
	if i.src == nil {
		i.src = Values(i.Input)
	}
	if !i.src.Next() {
		return false
	}
	var v T
	if err := json.Unmarshal(i.src.Value(), &v); err != nil {
		i.err = err
		return false
	}
	i.src.dropLeadingNewline()
	i.value = v
	return true
}

func (i *RecordIterator[T]) Value() T {
	return i.value
}

func (i *RecordIterator[T]) Err() error {
	if i.err != nil {
		return i.err
	}
	if i.src == nil {
		return nil
	}
	return i.src.Err()
}

func (i *RecordIterator[T]) Close() error {
	if i.src == nil {
		i.src = Values(i.Input)
	}
	return i.src.Close()
}

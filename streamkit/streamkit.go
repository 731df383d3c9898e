// Package streamkit turns the unbounded, arbitrarily chunked response bodies
// of the Docker Engine API into lazy sequences of discrete records.
//
// The daemon produces three wire shapes that need this treatment:
//
//   - the multiplexed stdio stream of attach/logs, where stdin/stdout/stderr
//     bytes are interleaved on one connection with a binary framing header
//     (Frames)
//   - progress and event streams, where JSON texts follow each other with
//     unreliable delimiters, sometimes none at all (Values)
//   - periodic one-object-per-tick streams such as container stats (Records)
//
// All three expose the same pull-based Iterator contract, so the consumer
// decides the pace and the decoders never read ahead of what is needed to
// produce the next item.
package streamkit

import (
	"io"

	"go.llib.dev/frameless/pkg/errorkit"
)

// Iterator define a separate object that encapsulates accessing and traversing an aggregate object.
// Clients use an iterator to access and traverse an aggregate without knowing its representation (data structures).
// Interface design inspirited by https://golang.org/pkg/encoding/json/#Decoder
// https://en.wikipedia.org/wiki/Iterator_pattern
type Iterator[V any] interface {
	// Closer is required to make it able to cancel iterators where resources are being used behind the scene
	// for all other cases where the underling io is handled on a higher level, it should simply return nil
	io.Closer
	// Err return the error cause.
	Err() error
	// Next will ensure that Value returns the next item when executed.
	// If the next value is not retrievable, Next should return false and ensure Err() will return the error cause.
	Next() bool
	// Value returns the current value in the iterator.
	// The action should be repeatable without side effects.
	Value() V
}

// Empty iterator is used to represent nil result with Null object pattern
func Empty[V any]() Iterator[V] {
	return &emptyIter[V]{}
}

type emptyIter[V any] struct{}

func (i *emptyIter[V]) Close() error { return nil }
func (i *emptyIter[V]) Next() bool   { return false }
func (i *emptyIter[V]) Err() error   { return nil }
func (i *emptyIter[V]) Value() V {
	var v V
	return v
}

// Error returns an Iterator whose only capability is returning an Err,
// and it never has a next element.
// This can be used when the stream source encounters an unrecoverable error during setup.
func Error[V any](err error) Iterator[V] {
	return &errorIter[V]{err: err}
}

type errorIter[V any] struct {
	err error
}

func (i *errorIter[V]) Close() error { return nil }
func (i *errorIter[V]) Next() bool   { return false }
func (i *errorIter[V]) Err() error   { return i.err }
func (i *errorIter[V]) Value() V {
	var v V
	return v
}

// Collect will drain the iterator into a slice, then close it.
func Collect[V any](itr Iterator[V]) (vs []V, rErr error) {
	defer func() { rErr = errorkit.Merge(rErr, itr.Close()) }()
	for itr.Next() {
		vs = append(vs, itr.Value())
	}
	return vs, itr.Err()
}

// First returns the first value of the iterator and closes it.
func First[V any](itr Iterator[V]) (v V, found bool, rErr error) {
	defer func() { rErr = errorkit.Merge(rErr, itr.Close()) }()
	if !itr.Next() {
		var zero V
		return zero, false, itr.Err()
	}
	return itr.Value(), true, nil
}

// closeInput closes the given byte source when it supports closing.
func closeInput(in io.Reader) error {
	if c, ok := in.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

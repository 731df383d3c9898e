package streamkit

import (
	"encoding/binary"
	"io"
	"sync/atomic"

	"go.llib.dev/frameless/pkg/errorkit"
)

const (
	// ErrUnknownStream is returned when a frame header carries a stream tag
	// other than stdin/stdout/stderr. The framing is broken at this point,
	// so the error is terminal for the iterator.
	ErrUnknownStream errorkit.Error = "streamkit: unknown stream tag in frame header"
	// ErrTruncated is returned when the byte source ends in the middle of a record.
	// It is distinct from a clean end of stream,
	// so consumers can tell a finished session apart from a dropped connection.
	ErrTruncated errorkit.Error = "streamkit: byte source ended mid record"
)

// StdStream identifies which standard stream a Frame belongs to.
type StdStream byte

const (
	Stdin  StdStream = 0
	Stdout StdStream = 1
	Stderr StdStream = 2
)

func (s StdStream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Frame is one multiplexed stdio unit of the attach/logs wire protocol.
type Frame struct {
	Stream  StdStream
	Payload []byte
}

// frameHeaderSize is the fixed size of the framing header:
// 1 byte stream tag, 3 reserved bytes, 4 bytes big-endian payload length.
const frameHeaderSize = 8

// Frames returns an iterator that decodes the multiplexed stdio framing
// protocol of the in byte source into a sequence of Frames.
// Frames are yielded strictly in wire order; stream interleaving is preserved.
//
// The iterator is single consumer and not restartable.
// Closing it closes the byte source when the source supports closing.
func Frames(in io.Reader) *FrameIterator {
	return &FrameIterator{Input: in}
}

// FrameIterator implements Iterator[Frame] over a framed byte source.
type FrameIterator struct {
	// Input is the byte source carrying the framed stream,
	// typically a streaming http response body.
	Input io.Reader

	header [frameHeaderSize]byte
	value  Frame
	err    error
	done   bool
	closed atomic.Bool
}

func (i *FrameIterator) Next() bool {
	if i.done || i.closed.Load() || i.err != nil {
		return false
	}
	n, err := io.ReadFull(i.Input, i.header[:])
	switch err {
	case nil:
	case io.EOF:
		// the source ended on a frame boundary, this is the clean end of the stream
		i.done = true
		return false
	case io.ErrUnexpectedEOF:
		i.done = true
		i.err = ErrTruncated.F("source ended after %d byte(s) of a frame header", n)
		return false
	default:
		i.done = true
		i.err = err
		return false
	}
	tag := StdStream(i.header[0])
	switch tag {
	case Stdin, Stdout, Stderr:
	default:
		i.done = true
		i.err = ErrUnknownStream.F("stream tag: %d", i.header[0])
		return false
	}
	// header bytes 1-3 are reserved, observed daemon behaviour leaves them unused,
	// they must not be validated
	length := binary.BigEndian.Uint32(i.header[4:])
	payload := make([]byte, length)
	if n, err := io.ReadFull(i.Input, payload); err != nil {
		i.done = true
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			i.err = ErrTruncated.F("source ended after %d of the %d payload byte(s) of a %s frame", n, length, tag)
		} else {
			i.err = err
		}
		return false
	}
	i.value = Frame{Stream: tag, Payload: payload}
	return true
}

func (i *FrameIterator) Value() Frame {
	return i.value
}

func (i *FrameIterator) Err() error {
	return i.err
}

// Close ends the iteration and closes the byte source when it supports closing.
// Unlike Next/Value/Err, Close may be called from another goroutine,
// closing the source is how a consumer blocked in Next gets released.
func (i *FrameIterator) Close() error {
	if i.closed.Swap(true) {
		return nil
	}
	return closeInput(i.Input)
}

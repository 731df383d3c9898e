package streamkit

import (
	"bytes"
	"io"
	"sync"
)

// Demux fans a frame stream out into per-channel readers.
//
// The frame iterator itself stays single consumer: whichever reader needs
// bytes pulls the next frame under a shared lock, and frames belonging to the
// other channels are parked in their side buffers until their reader asks.
// This keeps the wire order of each channel intact while letting stdout and
// stderr be consumed from different goroutines.
func Demux(frames Iterator[Frame]) *StdioStreams {
	s := &StdioStreams{frames: frames}
	s.Stdin = &stdioReader{s: s, stream: Stdin}
	s.Stdout = &stdioReader{s: s, stream: Stdout}
	s.Stderr = &stdioReader{s: s, stream: Stderr}
	return s
}

// StdioStreams exposes the three standard streams of a multiplexed
// attach/logs session as plain readers.
type StdioStreams struct {
	// Stdin carries the frames the daemon echoes back on the stdin channel.
	Stdin io.Reader
	// Stdout carries the process standard output.
	Stdout io.Reader
	// Stderr carries the process standard error.
	Stderr io.Reader

	frames Iterator[Frame]

	mutex sync.Mutex
	bufs  [3]bytes.Buffer
	done  bool
	err   error
}

// Close stops the session and closes the underlying frame source.
// Bytes already parked in the side buffers remain readable.
// Close is safe to call while readers are blocked on the other goroutines,
// it does not take the reader lock, closing the source is what releases them.
func (s *StdioStreams) Close() error {
	return s.frames.Close()
}

// pull consumes frames until the wanted channel has buffered bytes or the stream ends.
func (s *StdioStreams) pull(want StdStream) error {
	for s.bufs[want].Len() == 0 {
		if s.done {
			if s.err != nil {
				return s.err
			}
			return io.EOF
		}
		if !s.frames.Next() {
			s.done = true
			s.err = s.frames.Err()
			continue
		}
		f := s.frames.Value()
		s.bufs[f.Stream].Write(f.Payload)
	}
	return nil
}

type stdioReader struct {
	s      *StdioStreams
	stream StdStream
}

func (r *stdioReader) Read(p []byte) (int, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()
	if err := r.s.pull(r.stream); err != nil {
		return 0, err
	}
	return r.s.bufs[r.stream].Read(p)
}

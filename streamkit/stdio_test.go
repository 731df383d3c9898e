package streamkit_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"go.llib.dev/testcase/assert"

	"go.llib.dev/dockhand/streamkit"
)

func TestDemux(t *testing.T) {
	t.Parallel()

	t.Run("per channel bytes arrive in wire order", func(t *testing.T) {
		wire := concat(
			frame(1, []byte("out-a ")),
			frame(2, []byte("err-a ")),
			frame(1, []byte("out-b")),
			frame(2, []byte("err-b")),
		)
		stdio := streamkit.Demux(streamkit.Frames(bytes.NewReader(wire)))

		out, err := io.ReadAll(stdio.Stdout)
		assert.NoError(t, err)
		assert.Equal(t, "out-a out-b", string(out))

		serr, err := io.ReadAll(stdio.Stderr)
		assert.NoError(t, err)
		assert.Equal(t, "err-a err-b", string(serr))
	})

	t.Run("reading one channel parks the frames of the others", func(t *testing.T) {
		wire := concat(
			frame(2, []byte("early-err")),
			frame(1, []byte("out")),
		)
		stdio := streamkit.Demux(streamkit.Frames(bytes.NewReader(wire)))

		out, err := io.ReadAll(stdio.Stdout)
		assert.NoError(t, err)
		assert.Equal(t, "out", string(out))

		serr, err := io.ReadAll(stdio.Stderr)
		assert.NoError(t, err)
		assert.Equal(t, "early-err", string(serr))
	})

	t.Run("stdout and stderr can be drained from separate goroutines", func(t *testing.T) {
		var wire bytes.Buffer
		for i := 0; i < 50; i++ {
			wire.Write(frame(1, []byte("o")))
			wire.Write(frame(2, []byte("e")))
		}
		stdio := streamkit.Demux(streamkit.Frames(&wire))

		var (
			wg       sync.WaitGroup
			out, ser []byte
			oErr, eE error
		)
		wg.Add(2)
		go func() { defer wg.Done(); out, oErr = io.ReadAll(stdio.Stdout) }()
		go func() { defer wg.Done(); ser, eE = io.ReadAll(stdio.Stderr) }()
		wg.Wait()

		assert.NoError(t, oErr)
		assert.NoError(t, eE)
		assert.Equal(t, 50, len(out))
		assert.Equal(t, 50, len(ser))
	})

	t.Run("a clean end of stream reads as EOF on every channel", func(t *testing.T) {
		stdio := streamkit.Demux(streamkit.Frames(bytes.NewReader(nil)))
		for _, r := range []io.Reader{stdio.Stdin, stdio.Stdout, stdio.Stderr} {
			n, err := r.Read(make([]byte, 8))
			assert.Equal(t, 0, n)
			assert.ErrorIs(t, err, io.EOF)
		}
	})

	t.Run("a truncated stream surfaces the truncation instead of EOF", func(t *testing.T) {
		wire := concat(frame(1, []byte("ok")), frame(2, []byte("gone"))[:6])
		stdio := streamkit.Demux(streamkit.Frames(bytes.NewReader(wire)))

		out, err := io.ReadAll(stdio.Stdout)
		assert.ErrorIs(t, err, streamkit.ErrTruncated)
		assert.Equal(t, "ok", string(out))
	})

	t.Run("already parked bytes remain readable after the stream ended", func(t *testing.T) {
		wire := concat(frame(2, []byte("err")), frame(1, []byte("out")))
		stdio := streamkit.Demux(streamkit.Frames(bytes.NewReader(wire)))

		out, err := io.ReadAll(stdio.Stdout)
		assert.NoError(t, err)
		assert.Equal(t, "out", string(out))

		serr, err := io.ReadAll(stdio.Stderr)
		assert.NoError(t, err)
		assert.Equal(t, "err", string(serr))
	})

	t.Run("close releases the byte source", func(t *testing.T) {
		src := newChunkedReader(frame(1, []byte("x")))
		stdio := streamkit.Demux(streamkit.Frames(src))
		assert.NoError(t, stdio.Close())
		assert.True(t, src.closed)
	})

	t.Run("closing from another goroutine releases a reader blocked on the source", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		stdio := streamkit.Demux(streamkit.Frames(pr))

		done := make(chan struct{})
		go func() {
			defer close(done)
			io.ReadAll(stdio.Stdout)
		}()

		// the stdout reader sits in a pending source read with no data arriving
		assert.NoError(t, stdio.Close())
		assert.Within(t, time.Second, func(context.Context) {
			<-done
		})
	})

	t.Run("close may overlap active readers on other goroutines", func(t *testing.T) {
		pr, pw := io.Pipe()
		stdio := streamkit.Demux(streamkit.Frames(pr))

		go func() {
			for n := 0; n < 100; n++ {
				if _, err := pw.Write(frame(1, []byte("tick "))); err != nil {
					return
				}
			}
			pw.Close()
		}()

		done := make(chan struct{})
		go func() {
			defer close(done)
			buf := make([]byte, 16)
			for {
				if _, err := stdio.Stdout.Read(buf); err != nil {
					return
				}
			}
		}()

		assert.NoError(t, stdio.Close())
		assert.Within(t, time.Second, func(context.Context) {
			<-done
		})
	})
}

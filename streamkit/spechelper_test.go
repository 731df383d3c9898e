package streamkit_test

import (
	"encoding/binary"
	"io"

	"go.llib.dev/testcase/random"
)

var rnd = random.New(random.CryptoSeed{})

// frame encodes one multiplexed stdio frame the way the daemon does:
// 1 byte stream tag, 3 reserved bytes, 4 bytes big-endian payload length, payload.
func frame(tag byte, payload []byte) []byte {
	var header [8]byte
	header[0] = tag
	binary.BigEndian.PutUint32(header[4:], uint32(len(payload)))
	return append(header[:], payload...)
}

// chunkedReader delivers the data of a stream split into predetermined chunks,
// one chunk per Read call, to reproduce arbitrary TCP read boundaries.
type chunkedReader struct {
	chunks [][]byte
	closed bool
}

func newChunkedReader(data []byte, splitAt ...int) *chunkedReader {
	var (
		chunks [][]byte
		prev   int
	)
	for _, at := range splitAt {
		chunks = append(chunks, data[prev:at])
		prev = at
	}
	chunks = append(chunks, data[prev:])
	return &chunkedReader{chunks: chunks}
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	for len(r.chunks) != 0 && len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	return n, nil
}

func (r *chunkedReader) Close() error {
	r.closed = true
	return nil
}

// eachSplit runs blk with the input split at every possible byte offset
// across two reads, to prove chunk boundary independence.
func eachSplit(data []byte, blk func(in io.Reader)) {
	for at := 0; at <= len(data); at++ {
		blk(newChunkedReader(data, at))
	}
}

func concat(bs ...[]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

var _ io.ReadCloser = (*chunkedReader)(nil)

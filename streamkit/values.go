package streamkit

import (
	"encoding/json"
	"io"

	"go.llib.dev/frameless/pkg/errorkit"
)

// ErrMalformed is returned when the byte source contains something that
// cannot be the beginning of a top level JSON object or array.
const ErrMalformed errorkit.Error = "streamkit: malformed json stream"

// readChunkSize is the amount of bytes requested from the byte source per read.
const readChunkSize = 4096

// Values returns an iterator that splits the byte stream of in into a
// sequence of complete top level JSON texts.
//
// The daemon joins adjacent JSON texts with no reliable delimiter:
// sometimes a newline, sometimes whitespace, sometimes nothing ("}{" run-on).
// Boundary detection here is structural, it scans for balanced braces and
// brackets while tracking string literals and escape sequences,
// so every delimiter style decodes the same way and braces inside string
// values cannot be mistaken for structure.
//
// The iterator only reads from the source when the already buffered bytes
// cannot resolve the next boundary, and the buffer is trimmed after every
// yielded text, so memory use is bounded by the largest single record
// rather than the stream history.
func Values(in io.Reader) *ValueIterator {
	return &ValueIterator{Input: in}
}

// ValueIterator implements Iterator[json.RawMessage] over an undelimited JSON text stream.
type ValueIterator struct {
	// Input is the byte source carrying back-to-back JSON texts.
	Input io.Reader

	value json.RawMessage

	buf   []byte // bytes not yet resolved into a complete text
	pos   int    // scan cursor, bytes before it are already classified
	start int    // index of the first byte of the text being scanned
	depth int
	inStr bool
	esc   bool
	open  bool // whether the cursor is inside a json text

	chunk   []byte
	srcDone bool
	err     error
	done    bool
	closed  bool
}

func (i *ValueIterator) Next() bool {
	if i.done || i.closed || i.err != nil {
		return false
	}
	for {
		if found := i.scan(); found {
			return true
		}
		if i.err != nil {
			i.done = true
			return false
		}
		if !i.fill() {
			return false
		}
	}
}

func (i *ValueIterator) Value() json.RawMessage {
	return i.value
}

func (i *ValueIterator) Err() error {
	return i.err
}

func (i *ValueIterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.done = true
	i.buf = nil
	return closeInput(i.Input)
}

// scan advances the cursor through the pending buffer looking for the end of
// the current json text. It reports whether a complete text got extracted.
func (i *ValueIterator) scan() bool {
	for ; i.pos < len(i.buf); i.pos++ {
		c := i.buf[i.pos]
		if !i.open {
			switch c {
			case ' ', '\t', '\r', '\n':
				// interstitial whitespace between texts
			case '{', '[':
				i.open = true
				i.start = i.pos
				i.depth = 1
			default:
				i.err = ErrMalformed.F("unexpected byte %q between json texts", c)
				return false
			}
			continue
		}
		if i.inStr {
			switch {
			case i.esc:
				i.esc = false
			case c == '\\':
				i.esc = true
			case c == '"':
				i.inStr = false
			}
			continue
		}
		switch c {
		case '"':
			i.inStr = true
		case '{', '[':
			i.depth++
		case '}', ']':
			i.depth--
			if i.depth == 0 {
				i.extract()
				return true
			}
		}
	}
	return false
}

// extract copies out the finished text and drops it from the pending buffer,
// together with whatever preceded it, so the buffer only retains unresolved bytes.
func (i *ValueIterator) extract() {
	end := i.pos + 1
	raw := make(json.RawMessage, end-i.start)
	copy(raw, i.buf[i.start:end])
	i.value = raw
	n := copy(i.buf, i.buf[end:])
	i.buf = i.buf[:n]
	i.pos, i.start = 0, 0
	i.open, i.inStr, i.esc = false, false, false
}

// fill pulls the next chunk from the byte source.
// It reports whether scanning is worth another attempt.
func (i *ValueIterator) fill() bool {
	if i.srcDone {
		i.finish()
		return false
	}
	if i.chunk == nil {
		i.chunk = make([]byte, readChunkSize)
	}
	if !i.open {
		// everything scanned so far was interstitial whitespace, no need to keep it
		i.buf = i.buf[:0]
		i.pos = 0
	}
	n, err := i.Input.Read(i.chunk)
	if 0 < n {
		i.buf = append(i.buf, i.chunk[:n]...)
	}
	if err != nil {
		i.srcDone = true
		if err != io.EOF {
			i.err = err
			i.done = true
			return false
		}
		if n == 0 {
			i.finish()
			return false
		}
	}
	return true
}

// finish resolves the end of the byte source into either a clean end or a truncation.
func (i *ValueIterator) finish() {
	i.done = true
	if i.open {
		i.err = ErrTruncated.F("source ended with %d byte(s) of an unterminated json text", len(i.buf)-i.start)
	}
}

// dropLeadingNewline consumes a single line terminator sitting at the head of
// the pending buffer. Record streams that tick for hours put one after every
// record, dropping it keeps the buffer from accumulating cosmetic whitespace.
func (i *ValueIterator) dropLeadingNewline() {
	if i.open || i.pos != 0 {
		return
	}
	var cut int
	switch {
	case 2 <= len(i.buf) && i.buf[0] == '\r' && i.buf[1] == '\n':
		cut = 2
	case 1 <= len(i.buf) && i.buf[0] == '\n':
		cut = 1
	default:
		return
	}
	n := copy(i.buf, i.buf[cut:])
	i.buf = i.buf[:n]
}

// Package splice implements the streaming range-splicer state machine: given
// an origin response body delivered as a sequence of arbitrary-sized chunks,
// it emits only the byte slices belonging to a client's requested RangeSet,
// in the order the client listed them.
//
// The state machine is chunk-boundary-agnostic: it is fed one io.Reader
// chunk at a time and resumes its byte-offset bookkeeping across calls,
// regardless of how the caller's chunk boundaries line up with range
// boundaries.
package splice

import (
	"io"

	"github.com/sudhirj/rangeproxy/internal/rangeset"
)

// EmitFunc receives one slice of output bytes. Implementations must not
// retain the slice beyond the call, and must return any write error so the
// splicer can abort.
type EmitFunc func([]byte) error

// Splicer carries the cursor state across chunk boundaries.
type Splicer struct {
	pending      rangeset.Set
	current      *rangeset.Range
	absolutePos  int64
	tailCapacity int64
	tailBuffer   []byte
}

// New returns a Splicer for the given RangeSet. set must be non-empty; the
// caller is responsible for treating an empty/nil RangeSet as pass-through
// mode rather than constructing a Splicer.
func New(set rangeset.Set) *Splicer {
	s := &Splicer{pending: set}
	s.popNext()
	return s
}

// Done reports whether every range has been satisfied (no more output will
// ever be produced, even across further Feed calls).
func (s *Splicer) Done() bool {
	return s.current == nil && len(s.pending) == 0
}

func (s *Splicer) popNext() {
	if len(s.pending) == 0 {
		s.current = nil
		return
	}
	r := s.pending[0]
	s.pending = s.pending[1:]
	s.current = &r
	if r.Tail {
		s.tailCapacity = -r.Lo
		s.tailBuffer = s.tailBuffer[:0]
	}
}

// Feed processes one chunk of origin body, calling emit for each output
// slice it produces. absolutePos is advanced by len(chunk) regardless of how
// much of the chunk was actually used, since the splicer tracks its position
// in the overall body, not in a buffered window.
func (s *Splicer) Feed(chunk []byte, emit EmitFunc) error {
	if s.Done() {
		return nil
	}

	bStart := s.absolutePos
	bEnd := bStart + int64(len(chunk))

	for {
		if s.current == nil {
			break
		}

		if s.current.Tail {
			s.feedTail(chunk)
			break
		}

		lo := s.current.Lo
		hi := s.current.Hi
		open := s.current.Open()

		var (
			data        []byte
			rangeEnded  bool
			bufferEnded bool
		)

		switch {
		case open && bStart <= lo && bEnd >= lo:
			data = chunk[lo-bStart:]
			bufferEnded = true
		case open && bStart >= lo:
			data = chunk
			bufferEnded = true
		case open:
			// Open range, chunk lies entirely before lo: disjoint.
			bufferEnded = true
		case bStart <= lo && bEnd >= lo && bEnd < hi:
			data = chunk[lo-bStart:]
			bufferEnded = true
		case bStart <= lo && bEnd >= hi:
			data = chunk[lo-bStart : hi-bStart]
			rangeEnded = true
		case bStart >= lo && bStart <= hi && bEnd >= hi:
			data = chunk[:hi-bStart]
			rangeEnded = true
		case bStart >= lo && bEnd <= hi:
			data = chunk
			bufferEnded = true
		default:
			// Disjoint: this chunk contributes nothing to the current range.
			bufferEnded = true
		}

		if len(data) > 0 {
			if err := emit(data); err != nil {
				return err
			}
		}

		if rangeEnded {
			s.popNext()
		}
		if bufferEnded {
			break
		}
	}

	s.absolutePos = bEnd
	return nil
}

func (s *Splicer) feedTail(chunk []byte) {
	s.tailBuffer = append(s.tailBuffer, chunk...)
	if int64(len(s.tailBuffer)) > s.tailCapacity {
		s.tailBuffer = s.tailBuffer[int64(len(s.tailBuffer))-s.tailCapacity:]
	}
}

// Close signals EOF: any outstanding tail range is flushed and completed.
// Non-tail ranges that never fully arrived (origin closed early) simply
// produce no further output, per the "nothing for offsets past EOF" contract.
func (s *Splicer) Close(emit EmitFunc) error {
	if s.current != nil && s.current.Tail && len(s.tailBuffer) > 0 {
		if err := emit(s.tailBuffer); err != nil {
			return err
		}
	}
	s.current = nil
	s.pending = nil
	return nil
}

// Copy reads r through the Splicer into w, honouring ranges, until EOF or
// until every range is satisfied; once all ranges are done it stops reading
// r. It is the convenience entry point used by the origin→client relay.
func Copy(w io.Writer, r io.Reader, set rangeset.Set, bufSize int) (int64, error) {
	s := New(set)
	buf := make([]byte, bufSize)
	var total int64
	emit := func(p []byte) error {
		n, err := w.Write(p)
		total += int64(n)
		return err
	}
	for !s.Done() {
		n, err := r.Read(buf)
		if n > 0 {
			if ferr := s.Feed(buf[:n], emit); ferr != nil {
				return total, ferr
			}
		}
		if err != nil {
			if err == io.EOF {
				return total, s.Close(emit)
			}
			return total, err
		}
	}
	return total, nil
}

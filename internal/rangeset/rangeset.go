// Package rangeset models client-requested byte ranges and parses the
// RFC 7233 bytes= header/query syntax.
package rangeset

import (
	"strconv"
	"strings"
)

// Unbounded marks a Range whose upper bound is open ("lo-").
const Unbounded = int64(-1)

// Range is a half-open byte interval [Lo, Hi) into the origin body.
// A tail range (Tail == true) means "the last -Lo bytes of the body";
// Hi is meaningless for a tail range.
type Range struct {
	Lo   int64
	Hi   int64
	Tail bool
}

// Open reports whether the range has no upper bound (bytes=lo-).
func (r Range) Open() bool {
	return !r.Tail && r.Hi == Unbounded
}

// Set is an ordered, client-specified list of ranges. A nil or empty Set
// means "no ranging — pass the body through".
type Set []Range

// Equal reports whether two Sets contain the same ranges in the same order.
// Used by the reconciler to detect disagreement between header and query
// range specifications.
func Equal(a, b Set) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Parse parses the value of a "bytes=..." Range header or "range" query
// parameter (the "bytes=" prefix, if present, is stripped). Malformed input,
// or a tail range combined with any other range, yields a nil Set; callers
// must treat a nil Set as "no ranging".
func Parse(spec string) Set {
	spec = strings.TrimSpace(spec)
	spec = strings.TrimPrefix(spec, "bytes=")
	if spec == "" {
		return nil
	}

	items := strings.Split(spec, ",")
	set := make(Set, 0, len(items))
	for _, item := range items {
		r, ok := parseOne(strings.TrimSpace(item))
		if !ok {
			return nil
		}
		set = append(set, r)
	}

	if !tailPlacementValid(set) {
		return nil
	}
	return set
}

func tailPlacementValid(set Set) bool {
	for i, r := range set {
		if r.Tail && (len(set) != 1 || i != 0) {
			return false
		}
	}
	return true
}

// parseOne parses a single "lo-hi", "lo-", or "-N" item, storing Hi as
// exclusive (lo-hi in the wire syntax becomes (lo, hi+1) here).
func parseOne(item string) (Range, bool) {
	dash := strings.IndexByte(item, '-')
	if dash < 0 {
		return Range{}, false
	}

	loStr, hiStr := item[:dash], item[dash+1:]

	if loStr == "" {
		// "-N": tail range of the last N bytes.
		n, err := strconv.ParseInt(hiStr, 10, 64)
		if err != nil || n <= 0 {
			return Range{}, false
		}
		return Range{Lo: -n, Tail: true}, true
	}

	lo, err := strconv.ParseInt(loStr, 10, 64)
	if err != nil || lo < 0 {
		return Range{}, false
	}

	if hiStr == "" {
		return Range{Lo: lo, Hi: Unbounded}, true
	}

	hi, err := strconv.ParseInt(hiStr, 10, 64)
	if err != nil || hi < lo {
		return Range{}, false
	}
	return Range{Lo: lo, Hi: hi + 1}, true
}

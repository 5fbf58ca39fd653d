// Package stream serves finite byte resources honoring HTTP byte ranges.
//
// Unlike http.ServeContent, a malformed or unsatisfiable Range header is never
// rejected with 416: the full resource is served with 200 instead.
package stream

import (
	"strconv"
	"strings"
)

// Range is an inclusive byte interval within a resource of known size.
type Range struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by r.
func (r Range) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses a single "bytes=" range against size. It reports false for
// an absent, malformed or out-of-bounds header.
func ParseRange(header string, size int64) (Range, bool) {
	unit, ranges, ok := strings.Cut(header, "=")
	if !ok || !strings.EqualFold(strings.TrimSpace(unit), "bytes") {
		return Range{}, false
	}
	// A missing dash reads as an open-ended start, e.g. "bytes=10".
	startStr, endStr, _ := strings.Cut(ranges, "-")
	startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)

	var start, end int64
	var err error
	switch {
	case startStr != "" && endStr != "":
		if start, err = strconv.ParseInt(startStr, 10, 64); err != nil {
			return Range{}, false
		}
		if end, err = strconv.ParseInt(endStr, 10, 64); err != nil {
			return Range{}, false
		}
	case startStr != "":
		if start, err = strconv.ParseInt(startStr, 10, 64); err != nil {
			return Range{}, false
		}
		end = size - 1
	case endStr != "":
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return Range{}, false
		}
		start, end = size-n, size-1
	default:
		return Range{}, false
	}

	if start < 0 || end >= size || start > end {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strconv"
)

// ChunkSize is the size of each body chunk read from the resource.
const ChunkSize = 64 * 1024

// Response is a prepared streaming response. Body reads lazily from the
// resource each time it is ranged over.
type Response struct {
	Status int
	Header http.Header
	Range  Range
	Body   iter.Seq2[[]byte, error]
}

// Serve prepares the response for src of the given size and the raw Range
// header value, which may be empty.
func Serve(src io.ReaderAt, size int64, rangeHeader string) Response {
	header := http.Header{}
	header.Set("Accept-Ranges", "bytes")

	if rng, ok := ParseRange(rangeHeader, size); ok {
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
		header.Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
		return Response{
			Status: http.StatusPartialContent,
			Header: header,
			Range:  rng,
			Body:   Chunks(src, rng.Start, rng.End, ChunkSize),
		}
	}

	header.Set("Content-Length", strconv.FormatInt(size, 10))
	full := Range{Start: 0, End: size - 1}
	return Response{
		Status: http.StatusOK,
		Header: header,
		Range:  full,
		Body:   Chunks(src, full.Start, full.End, ChunkSize),
	}
}

// Chunks yields the bytes of src in [start, end] in pieces of at most
// chunkSize. A short read ends the sequence without an error; any other read
// error is yielded once and ends it.
func Chunks(src io.ReaderAt, start, end int64, chunkSize int) iter.Seq2[[]byte, error] {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	return func(yield func([]byte, error) bool) {
		offset := start
		for offset <= end {
			want := end - offset + 1
			if want > int64(chunkSize) {
				want = int64(chunkSize)
			}
			buf := make([]byte, want)
			n, err := src.ReadAt(buf, offset)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
				offset += int64(n)
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
			if n == 0 {
				return
			}
		}
	}
}

// Send writes the status, headers and body to w. It stops at the first body
// error, which is returned; by then the status line has already been sent.
func (r Response) Send(w http.ResponseWriter, contentType string) (int64, error) {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = v
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	w.WriteHeader(r.Status)

	var written int64
	for chunk, err := range r.Body {
		if err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

package stream

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resource(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func collect(t *testing.T, resp Response) []byte {
	t.Helper()
	var buf bytes.Buffer
	for chunk, err := range resp.Body {
		require.NoError(t, err)
		buf.Write(chunk)
	}
	return buf.Bytes()
}

func TestServeExplicitRange(t *testing.T) {
	data := resource(1000)
	resp := Serve(bytes.NewReader(data), int64(len(data)), "bytes=100-199")

	assert.Equal(t, http.StatusPartialContent, resp.Status)
	assert.Equal(t, "bytes 100-199/1000", resp.Header.Get("Content-Range"))
	assert.Equal(t, "100", resp.Header.Get("Content-Length"))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
	assert.Equal(t, data[100:200], collect(t, resp))
}

func TestServeFirstByte(t *testing.T) {
	data := resource(500)
	resp := Serve(bytes.NewReader(data), 500, "bytes=0-0")

	assert.Equal(t, http.StatusPartialContent, resp.Status)
	assert.Equal(t, "bytes 0-0/500", resp.Header.Get("Content-Range"))
	assert.Equal(t, data[:1], collect(t, resp))
}

func TestServeSuffix(t *testing.T) {
	data := resource(300)
	resp := Serve(bytes.NewReader(data), 300, "bytes=-10")

	assert.Equal(t, http.StatusPartialContent, resp.Status)
	assert.Equal(t, "bytes 290-299/300", resp.Header.Get("Content-Range"))
	assert.Equal(t, data[290:], collect(t, resp))
}

func TestServeFallsBackToFullContent(t *testing.T) {
	data := resource(3*ChunkSize + 17)
	size := int64(len(data))
	for _, header := range []string{"", "bytes=50-10", "bytes=0-" + strconv.FormatInt(size, 10), "lines=0-1", "bytes=x-y"} {
		t.Run(header, func(t *testing.T) {
			resp := Serve(bytes.NewReader(data), size, header)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Empty(t, resp.Header.Get("Content-Range"))
			assert.Equal(t, strconv.FormatInt(size, 10), resp.Header.Get("Content-Length"))
			assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
			assert.Equal(t, data, collect(t, resp))
		})
	}
}

func TestChunksAreBounded(t *testing.T) {
	data := resource(2*ChunkSize + 5)
	var sizes []int
	for chunk, err := range Chunks(bytes.NewReader(data), 0, int64(len(data)-1), ChunkSize) {
		require.NoError(t, err)
		sizes = append(sizes, len(chunk))
	}
	assert.Equal(t, []int{ChunkSize, ChunkSize, 5}, sizes)
}

func TestChunksShortReadEndsQuietly(t *testing.T) {
	// The resource claims 100 bytes but only holds 40.
	data := resource(40)
	resp := Serve(bytes.NewReader(data), 100, "bytes=10-89")
	assert.Equal(t, http.StatusPartialContent, resp.Status)
	assert.Equal(t, data[10:], collect(t, resp))
}

type failingReader struct {
	good []byte
	err  error
}

func (f failingReader) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.good)) {
		return 0, f.err
	}
	n := copy(p, f.good[off:])
	if n < len(p) {
		return n, f.err
	}
	return n, nil
}

func TestChunksYieldsReadError(t *testing.T) {
	boom := errors.New("disk gone")
	src := failingReader{good: resource(10), err: boom}
	var got []byte
	var gotErr error
	for chunk, err := range Chunks(src, 0, 99, 16) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, chunk...)
	}
	assert.ErrorIs(t, gotErr, boom)
	assert.Len(t, got, 10)
}

func TestChunksStopsWhenConsumerStops(t *testing.T) {
	data := resource(100)
	count := 0
	for range Chunks(bytes.NewReader(data), 0, 99, 10) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestResponseSend(t *testing.T) {
	data := resource(1000)
	rec := httptest.NewRecorder()
	n, err := Serve(bytes.NewReader(data), 1000, "bytes=100-199").Send(rec, "video/mp4")
	require.NoError(t, err)

	assert.Equal(t, int64(100), n)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, data[100:200], body)
}

func TestResponseSendReportsReadError(t *testing.T) {
	boom := errors.New("permission denied")
	rec := httptest.NewRecorder()
	_, err := Serve(failingReader{good: resource(5), err: boom}, 50, "").Send(rec, "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, rec.Body.Len())
}

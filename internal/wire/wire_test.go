package wire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestLine(t *testing.T) {
	rl, err := ParseRequestLine("GET /foo?range=bytes=0-10 HTTP/1.1")
	require.NoError(t, err)
	assert.Equal(t, RequestLine{Method: "GET", Target: "/foo?range=bytes=0-10", Version: "HTTP/1.1"}, rl)
	assert.Equal(t, "GET /foo?range=bytes=0-10 HTTP/1.1", rl.String())
}

func TestParseRequestLineMalformed(t *testing.T) {
	_, err := ParseRequestLine("GET /foo")
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestParseStatusLine(t *testing.T) {
	sl, err := ParseStatusLine("HTTP/1.1 206 Partial Content")
	require.NoError(t, err)
	assert.Equal(t, StatusLine{Version: "HTTP/1.1", Code: 206, Reason: "Partial Content"}, sl)
	assert.Equal(t, "HTTP/1.1 206 Partial Content", sl.String())
}

func TestParseStatusLineNoReason(t *testing.T) {
	sl, err := ParseStatusLine("HTTP/1.1 200")
	require.NoError(t, err)
	assert.Equal(t, 200, sl.Code)
	assert.Equal(t, "HTTP/1.1 200", sl.String())
}

func TestParseStatusLineMalformed(t *testing.T) {
	_, err := ParseStatusLine("bogus")
	assert.ErrorIs(t, err, ErrMalformedLine)

	_, err = ParseStatusLine("HTTP/1.1 notanumber")
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestParseHeaderLine(t *testing.T) {
	h, err := ParseHeaderLine("Host: example.com:8080")
	require.NoError(t, err)
	assert.Equal(t, Header{Key: "host", Value: "example.com:8080"}, h)
	assert.Equal(t, "host: example.com:8080", h.String())
}

func TestParseHeaderLineMalformed(t *testing.T) {
	_, err := ParseHeaderLine("no-colon-here")
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestReadLineStripsTerminator(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))

	line, err := ReadLine(r)
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1", line)

	line, err = ReadLine(r)
	require.NoError(t, err)
	assert.Equal(t, "Host: x", line)

	line, err = ReadLine(r)
	require.NoError(t, err)
	assert.True(t, IsBlank(line))
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteLine(&buf, "HTTP/1.1 200 OK")
	require.NoError(t, err)
	assert.Equal(t, len("HTTP/1.1 200 OK\r\n"), n)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", buf.String())
}

package proxy

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sudhirj/rangeproxy/internal/rangeset"
	"github.com/sudhirj/rangeproxy/internal/splice"
	"github.com/sudhirj/rangeproxy/internal/wire"
)

// deadlineReader applies a fresh read deadline to conn before every Read,
// and folds a deadline-exceeded error into io.EOF. A stall longer than the
// configured timeout ends that relay direction rather than blocking it
// forever, on the assumption that a peer with more to say would have said
// something within the window.
type deadlineReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (d deadlineReader) Read(p []byte) (int, error) {
	_ = d.conn.SetReadDeadline(time.Now().Add(d.timeout))
	n, err := d.conn.Read(p)
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return n, io.EOF
	}
	return n, err
}

// relay runs both directions of a proxied connection concurrently and
// waits for both to finish before returning: the client-to-origin pump is
// opaque (it never looks at the bytes), the origin-to-client pump is
// range-aware when ranges is non-empty.
func (l *Listener) relay(client net.Conn, clientReader *bufio.Reader, origin net.Conn, ranges rangeset.Set, version string, log *logrus.Entry) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		l.relayClientToOrigin(client, clientReader, origin)
	}()

	go func() {
		defer wg.Done()
		if err := l.relayOriginToClient(origin, client, ranges, version); err != nil {
			log.WithError(err).Debug("origin-to-client relay ended")
		}
	}()

	wg.Wait()
}

// relayClientToOrigin forwards whatever request body bytes the client
// sends (already-buffered bytes in clientReader, then further reads from
// the underlying connection) straight through to the origin, untouched.
// Each underlying read is bounded by the configured read timeout, same as
// the origin-to-client direction, so a client that goes quiet ends the pump
// instead of holding the goroutine open forever.
func (l *Listener) relayClientToOrigin(client net.Conn, clientReader *bufio.Reader, origin net.Conn) {
	buf := make([]byte, l.cfg.ReadBufferSize)
	for {
		_ = client.SetReadDeadline(time.Now().Add(l.cfg.ReadTimeout))
		n, err := clientReader.Read(buf)
		if n > 0 {
			if _, werr := origin.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// relayOriginToClient reads the origin's status line and headers (bounded
// by the read timeout), rewrites the status line to 206 when this proxy is
// the one doing the range splicing, relays the headers verbatim, and then
// relays the body either opaquely or range-spliced.
func (l *Listener) relayOriginToClient(origin net.Conn, client net.Conn, ranges rangeset.Set, requestVersion string) error {
	timedOrigin := bufio.NewReader(deadlineReader{conn: origin, timeout: l.cfg.ReadTimeout})

	statusLineRaw, err := wire.ReadLine(timedOrigin)
	if err != nil {
		return err
	}
	statusLine, err := wire.ParseStatusLine(statusLineRaw)
	if err != nil {
		return err
	}

	effectiveRanges := ranges
	if statusLine.Code == http.StatusPartialContent {
		// Origin already honoured the range itself; let its body through
		// untouched and don't re-splice on top of it.
		effectiveRanges = nil
	}

	outLine := statusLine
	if len(effectiveRanges) > 0 {
		outLine = wire.StatusLine{Version: statusLine.Version, Code: http.StatusPartialContent, Reason: "Partial Content"}
	}

	n, err := wire.WriteLine(client, outLine.String())
	if err != nil {
		return err
	}
	l.stats.AddBytesTransferred(int64(n))

	for {
		line, lerr := wire.ReadLine(timedOrigin)
		if lerr != nil {
			break
		}
		if wire.IsBlank(line) {
			break
		}
		n, err := wire.WriteLine(client, line)
		if err != nil {
			return err
		}
		l.stats.AddBytesTransferred(int64(n))
	}

	n, err = client.Write([]byte(wire.CRLF))
	if err != nil {
		return err
	}
	l.stats.AddBytesTransferred(int64(n))

	if len(effectiveRanges) > 0 {
		written, err := splice.Copy(client, timedOrigin, effectiveRanges, l.cfg.ReadBufferSize)
		l.stats.AddBytesTransferred(written)
		return err
	}

	buf := make([]byte, l.cfg.ReadBufferSize)
	for {
		rn, rerr := timedOrigin.Read(buf)
		if rn > 0 {
			if _, werr := client.Write(buf[:rn]); werr != nil {
				return werr
			}
			l.stats.AddBytesTransferred(int64(rn))
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return rerr
		}
	}
}

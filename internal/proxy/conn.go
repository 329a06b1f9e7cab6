package proxy

import (
	"bufio"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sudhirj/rangeproxy/internal/rangeset"
	"github.com/sudhirj/rangeproxy/internal/wire"
)

const dialTimeout = 5 * time.Second

// handle runs the full per-connection state machine: read request line,
// short-circuit admin endpoints, parse ranges, validate the Host header,
// dial the origin, and relay both directions. It always closes conn before
// returning.
func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReader(conn)

	reqLine, err := wire.ReadLine(br)
	if err != nil || wire.IsBlank(reqLine) {
		return
	}

	rl, err := wire.ParseRequestLine(reqLine)
	if err != nil {
		return
	}

	u, err := url.Parse(rl.Target)
	if err != nil {
		return
	}

	log := l.log.WithFields(logrus.Fields{"method": rl.Method, "path": u.Path})

	if rl.Method == "GET" && u.Path == "/stats" {
		l.serveStats(conn)
		return
	}
	if rl.Method == "GET" && u.Path == "/metrics" && l.mirror != nil {
		l.serveMetrics(conn)
		return
	}

	var queryRanges rangeset.Set
	if q := u.Query().Get("range"); q != "" {
		queryRanges = rangeset.Parse(q)
	}

	headerLines, host, port, headerRanges, err := l.readRequestHeaders(br)
	if err != nil {
		return
	}

	ranges, conflict := reconcileRanges(queryRanges, headerRanges)
	if conflict {
		l.stats.IncRangeConflicts()
		_, _ = wire.WriteLine(conn, "HTTP/1.1 416 Requested Range Not Satisfiable")
		return
	}
	if len(ranges) > 0 {
		l.stats.IncRangeRequests()
	}

	if l.isLoopback(host, port) {
		l.stats.IncConnectionsRejectedLoop()
		log.WithFields(logrus.Fields{"host": host, "port": port}).Warn("rejecting request that loops back to this proxy")
		return
	}

	origin, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), dialTimeout)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"host": host, "port": port}).Warn("failed to dial origin")
		return
	}
	defer origin.Close()

	if err := l.forwardRequestHead(origin, reqLine, headerLines); err != nil {
		log.WithError(err).Warn("failed to forward request to origin")
		return
	}

	l.relay(conn, br, origin, ranges, rl.Version, log)
}

// readRequestHeaders reads header lines up to the blank terminator,
// returning the raw lines (for verbatim forwarding), the Host header's
// split host/port, and any Range header's parsed RangeSet.
func (l *Listener) readRequestHeaders(br *bufio.Reader) (lines []string, host string, port int, ranges rangeset.Set, err error) {
	port = 80
	for {
		line, lerr := wire.ReadLine(br)
		if lerr != nil {
			return nil, "", 0, nil, lerr
		}
		if wire.IsBlank(line) {
			return lines, host, port, ranges, nil
		}

		h, perr := wire.ParseHeaderLine(line)
		if perr != nil {
			lines = append(lines, line)
			continue
		}

		switch h.Key {
		case "host":
			if hostPart, portPart, ok := strings.Cut(h.Value, ":"); ok {
				host = hostPart
				if p, convErr := strconv.Atoi(portPart); convErr == nil {
					port = p
				}
			} else {
				host = h.Value
			}
		case "range":
			ranges = rangeset.Parse(h.Value)
		case "connection":
			// This proxy never supports keep-alive (SPEC non-goal): drop
			// whatever the client asked for and let forwardRequestHead
			// impose "close" unconditionally.
			continue
		}

		lines = append(lines, line)
	}
}

// reconcileRanges implements the header-vs-query agreement rule: if both
// are present they must describe the same RangeSet, otherwise the request
// is rejected with 416. If only one is present, it wins outright.
func reconcileRanges(query, header rangeset.Set) (effective rangeset.Set, conflict bool) {
	switch {
	case len(query) > 0 && len(header) > 0:
		if !rangeset.Equal(query, header) {
			return nil, true
		}
		return header, false
	case len(header) > 0:
		return header, false
	default:
		return query, false
	}
}

// isLoopback implements the proxy's loop-protection check: reject a
// request with no Host header at all, one that resolves to this listener's
// own bind address and port, or one that names a loopback alias on this
// listener's port.
func (l *Listener) isLoopback(host string, port int) bool {
	if host == "" {
		return true
	}

	if host == l.cfg.Host && port == l.listenPort {
		return true
	}

	if (host == "127.0.0.1" || host == "localhost") && port == l.listenPort {
		return true
	}

	if l.listenIP != nil {
		if ips, err := net.LookupIP(host); err == nil {
			for _, ip := range ips {
				if ip.Equal(l.listenIP) && port == l.listenPort {
					return true
				}
			}
		}
	}

	return false
}

// forwardRequestHead writes the client's request line and header lines
// through to the origin connection verbatim, followed by the blank line
// that terminates the header block. A "Connection: close" header is always
// appended, overriding anything the client asked for — this proxy never
// supports keep-alive, so every origin connection is single-request.
func (l *Listener) forwardRequestHead(origin net.Conn, reqLine string, headerLines []string) error {
	var sb strings.Builder
	sb.WriteString(reqLine)
	sb.WriteString(wire.CRLF)
	for _, h := range headerLines {
		sb.WriteString(h)
		sb.WriteString(wire.CRLF)
	}
	sb.WriteString("Connection: close")
	sb.WriteString(wire.CRLF)
	sb.WriteString(wire.CRLF)

	_, err := origin.Write([]byte(sb.String()))
	if err != nil {
		return fmt.Errorf("writing request head to origin: %w", err)
	}
	return nil
}

package proxy

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/sudhirj/rangeproxy/internal/wire"
)

// serveStats answers GET /stats with the JSON-encoded Snapshot, short-
// circuiting before any range parsing or origin dialing.
func (l *Listener) serveStats(conn net.Conn) {
	body, err := json.Marshal(l.stats.Snapshot())
	if err != nil {
		return
	}
	writeJSONResponse(conn, body)
}

// serveMetrics answers GET /metrics with the Prometheus text exposition
// format, when the metrics exporter is enabled.
func (l *Listener) serveMetrics(conn net.Conn) {
	body, err := l.mirror.Render()
	if err != nil {
		return
	}

	_, _ = wire.WriteLine(conn, "HTTP/1.1 200 OK")
	_, _ = wire.WriteLine(conn, fmt.Sprintf("content-length: %d", len(body)))
	_, _ = wire.WriteLine(conn, "content-type: text/plain; version=0.0.4")
	_, _ = conn.Write([]byte(wire.CRLF))
	_, _ = conn.Write(body)
}

func writeJSONResponse(conn net.Conn, body []byte) {
	_, _ = wire.WriteLine(conn, "HTTP/1.1 200 OK")
	_, _ = wire.WriteLine(conn, fmt.Sprintf("Content-Length: %d", len(body)))
	_, _ = wire.WriteLine(conn, "Content-Type: application/json")
	_, _ = conn.Write([]byte(wire.CRLF))
	_, _ = conn.Write(body)
	_, _ = conn.Write([]byte(wire.CRLF))
}

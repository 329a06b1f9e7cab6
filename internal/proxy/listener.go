// Package proxy implements the connection handler: accept a client
// connection, parse just enough of its HTTP/1.x request to find the Host
// header and any byte-range specification, dial the origin, and relay both
// directions — the response direction range-aware, via internal/splice.
package proxy

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/sudhirj/rangeproxy/internal/config"
	"github.com/sudhirj/rangeproxy/internal/stats"
)

// Listener accepts connections and hands each to handle in its own
// goroutine.
type Listener struct {
	ln         net.Listener
	cfg        *config.Config
	stats      *stats.Registry
	mirror     *stats.PrometheusMirror
	log        *logrus.Entry
	listenIP   net.IP
	listenPort int
}

// NewListener binds cfg.Addr() and returns a Listener ready to Serve. The
// actual bound port (which may differ from cfg.Port when cfg.Port is 0, as
// in tests) is what loop-protection checks against, not the configured one.
func NewListener(cfg *config.Config, reg *stats.Registry, mirror *stats.PrometheusMirror, log *logrus.Entry) (*Listener, error) {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, err
	}

	var listenIP net.IP
	if ips, err := net.LookupIP(cfg.Host); err == nil && len(ips) > 0 {
		listenIP = ips[0]
	}

	listenPort := cfg.Port
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		listenPort = tcpAddr.Port
	}

	return &Listener{
		ln:         ln,
		cfg:        cfg,
		stats:      reg,
		mirror:     mirror,
		log:        log,
		listenIP:   listenIP,
		listenPort: listenPort,
	}, nil
}

// Addr returns the address the listener is actually bound to (useful when
// cfg.Port is 0 and the kernel picked an ephemeral port, as in tests).
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Serve runs the accept loop until ctx is cancelled or the listener is
// closed. Each accepted connection is handled in its own goroutine and
// Serve does not wait for in-flight connections to finish before returning.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		l.stats.IncConnectionsAccepted()
		go l.handle(conn)
	}
}

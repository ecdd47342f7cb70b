package transport

import (
	"errors"
	"net"
	"sync"
	"time"
)

// ErrClosed is returned by Recv and Send after the transport closed.
var ErrClosed = errors.New("transport: closed")

// Transport is the byte-buffer capability the server core consumes. The
// network event loop behind it is not part of the core; tests substitute
// an in-memory pipe.
type Transport interface {
	// Send writes one complete chunk to the peer.
	Send(buf []byte) error
	// Recv returns the next inbound chunk payload. Blocks until data is
	// available; returns io.EOF when the peer disconnects and ErrClosed
	// once the transport itself was closed.
	Recv() (*RawMessage, error)
	// Close tears the connection down.
	Close() error
	// RemoteAddr names the peer for logging.
	RemoteAddr() string
}

// TCPTransport frames chunks over a net.Conn.
type TCPTransport struct {
	conn         net.Conn
	writeMu      sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration

	limitsMu sync.RWMutex
	limits   Limits
}

// NewTCPTransport wraps an accepted connection. Limits start at the
// server defaults and tighten after the HEL/ACK handshake.
func NewTCPTransport(conn net.Conn, readTimeout, writeTimeout time.Duration) *TCPTransport {
	return &TCPTransport{
		conn:         conn,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		limits:       DefaultLimits(),
	}
}

// SetLimits installs the negotiated connection parameters.
func (t *TCPTransport) SetLimits(limits Limits) {
	t.limitsMu.Lock()
	t.limits = limits
	t.limitsMu.Unlock()
}

// Limits returns the current connection parameters.
func (t *TCPTransport) Limits() Limits {
	t.limitsMu.RLock()
	defer t.limitsMu.RUnlock()
	return t.limits
}

// Recv reads the next chunk, enforcing the receive buffer size.
func (t *TCPTransport) Recv() (*RawMessage, error) {
	if t.readTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
			return nil, err
		}
	}
	msg, err := ReadMessage(t.conn, t.Limits().ReceiveBufferSize)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return msg, nil
}

// Send writes one chunk. Concurrent senders (dispatch responses and
// publish notifications) are serialized so chunks never interleave.
func (t *TCPTransport) Send(buf []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := t.conn.Write(buf)
	if errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}

// Close closes the underlying connection.
func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

// RemoteAddr returns the peer address.
func (t *TCPTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

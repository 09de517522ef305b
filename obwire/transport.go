package obwire

import (
	"bufio"
	"net"
	"time"

	"github.com/hugozhu/obclient/config"
	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/logutil"
	"go.uber.org/zap"
)

const defaultReaderSize = 16 * 1024

// Transport is the byte stream a connection runs on. The core issues discrete
// read and write calls against it and never touches sockets directly, so tests
// and host environments can supply their own implementation.
//
// ReusedCount reports how many times the transport has been handed out from a
// pool. A non-zero count means a previous owner already completed the startup
// handshake on this stream.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	ReusedCount() int
}

// bufferedReadConn is a net.Conn compatible structure that reads from bufio.Reader.
type bufferedReadConn struct {
	net.Conn
	rb *bufio.Reader
}

func (conn bufferedReadConn) Read(b []byte) (n int, err error) {
	return conn.rb.Read(b)
}

func newBufferedReadConn(conn net.Conn) *bufferedReadConn {
	return &bufferedReadConn{
		Conn: conn,
		rb:   bufio.NewReaderSize(conn, defaultReaderSize),
	}
}

// tcpTransport is the default Transport over a TCP connection.
type tcpTransport struct {
	*bufferedReadConn
	reused int
}

func (t *tcpTransport) ReusedCount() int {
	return t.reused
}

// DialTCP opens a TCP transport to the server named by the config.
func DialTCP(cfg *config.Config) (Transport, error) {
	dialer := net.Dialer{Timeout: time.Duration(cfg.DialTimeout) * time.Second}
	conn, err := dialer.Dial("tcp", cfg.Addr())
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.TCPKeepAlive {
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				logutil.BgLogger().Error("failed to set tcp keep alive option", zap.Error(err))
			}
		}
	}
	return &tcpTransport{bufferedReadConn: newBufferedReadConn(conn)}, nil
}

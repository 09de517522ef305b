package obwire

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/hugozhu/obclient/config"
	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/logutil"
	"github.com/hugozhu/obclient/metrics"
)

// Connection status. A connection accepts queries only while connected;
// Close clears the status so any later use is rejected.
const (
	statusUninitialized int32 = iota
	statusConnected
)

var baseConnID uint32

// Conn is one client connection to the server. It maintains the connection
// state and drives the startup handshake and the per-query result stream.
//
// A Conn carries exactly one logical operation at a time; sharing it across
// concurrent operations requires external serialization.
type Conn struct {
	cfg       *config.Config
	transport Transport
	pkt       *PacketIO

	// ConnectionID is atomically allocated by a global variable, unique in process scope.
	ConnectionID uint32
	status       int32
}

// NewConn creates a Conn on an already connected transport. The handshake has
// not run yet; call Handshake before issuing queries.
func NewConn(cfg *config.Config, t Transport) *Conn {
	c := &Conn{
		cfg:          cfg,
		transport:    t,
		ConnectionID: atomic.AddUint32(&baseConnID, 1),
		status:       statusUninitialized,
	}
	c.pkt = NewPacketIO(t,
		time.Duration(cfg.ReadTimeout)*time.Second,
		time.Duration(cfg.WriteTimeout)*time.Second)
	return c
}

// Open dials the configured server and performs the startup handshake.
func Open(ctx context.Context, cfg *config.Config) (*Conn, error) {
	t, err := DialTCP(cfg)
	if err != nil {
		return nil, err
	}
	c := NewConn(cfg, t)
	if err := c.Handshake(ctx); err != nil {
		errors.Log(t.Close())
		return nil, err
	}
	return c, nil
}

func (c *Conn) String() string {
	return fmt.Sprintf("id:%d, addr:%s, pool:%s, status:%d",
		c.ConnectionID, c.cfg.Addr(), c.cfg.PoolKey(), atomic.LoadInt32(&c.status))
}

// Connected reports whether the connection has reached the ready state.
func (c *Conn) Connected() bool {
	return atomic.LoadInt32(&c.status) == statusConnected
}

// Close closes the underlying transport and clears the connection state.
func (c *Conn) Close() error {
	if atomic.SwapInt32(&c.status, statusUninitialized) == statusConnected {
		metrics.ConnGauge.Dec()
	}
	return errors.Trace(c.transport.Close())
}

// Query sends one simple query and streams the decoded result units to the
// handler as they arrive. A *ServerError is delivered to the handler and also
// returned; the connection remains connected afterwards and may run the next
// query. All other errors abort the query and are not retried here.
func (c *Conn) Query(ctx context.Context, sql string, h ResultHandler) (err error) {
	if atomic.LoadInt32(&c.status) != statusConnected {
		return ErrNotConnected.GenWithStackByArgs()
	}

	span := opentracing.StartSpan("obwire.query")
	ctx = logutil.WithKeyValue(ctx, "conn", strconv.FormatUint(uint64(c.ConnectionID), 10))

	startTime := time.Now()
	defer func() {
		span.Finish()
		metrics.QueryDurationHistogram.WithLabelValues(metrics.RetLabel(err)).
			Observe(time.Since(startTime).Seconds())
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			stackSize := runtime.Stack(buf, false)
			logutil.Logger(ctx).Error("query panic",
				zap.String("sql", queryStrForLog(sql)),
				zap.String("err", fmt.Sprintf("%v", r)),
				zap.String("stack", string(buf[:stackSize])),
			)
			metrics.PanicCounter.WithLabelValues(metrics.LabelQuery).Inc()
			err = errors.Errorf("query panic: %v", r)
		}
	}()

	err = c.readResults(ctx, sql, h)
	if err != nil {
		if serverErr, ok := errors.Cause(err).(*ServerError); ok {
			logutil.Logger(ctx).Warn("query failed on server",
				zap.String("sql", queryStrForLog(sql)),
				zap.String("code", serverErr.Code()),
				zap.String("message", serverErr.Message()),
			)
		} else {
			logutil.Logger(ctx).Warn("query failed",
				zap.String("sql", queryStrForLog(sql)),
				zap.String("err", errors.ErrorStack(err)),
			)
		}
	}
	return err
}

// readResults runs the per-query receive loop: classify each packet by tag,
// decode it and hand the unit to the handler. The loop ends at command
// complete, stops immediately on a server error report, and treats any
// transport failure (including a stream cut before a terminator) as fatal
// for the query.
func (c *Conn) readResults(ctx context.Context, sql string, h ResultHandler) error {
	if err := c.pkt.WritePacket(msgQueryQ, []byte(sql)); err != nil {
		return errors.Annotate(err, "send query")
	}
	for {
		tag, payload, err := c.pkt.ReadPacket()
		if err != nil {
			return errors.Annotate(err, "receive result packet")
		}
		switch tag {
		case msgRowDescriptionT:
			columns, err := decodeRowDescription(payload)
			if err != nil {
				return errors.Trace(err)
			}
			h.OnColumns(columns)
		case msgDataRowD:
			row, err := decodeDataRow(payload)
			if err != nil {
				return errors.Trace(err)
			}
			h.OnRow(row)
		case msgErrorResponseE:
			serverErr, err := decodeErrorReport(payload)
			if err != nil {
				return errors.Trace(err)
			}
			metrics.ServerErrorCounter.Inc()
			h.OnServerError(serverErr)
			// No further packets are read for this query. A ready-for-query
			// the server may still send is skipped by the next query's loop.
			return serverErr
		case msgCommandCompleteC:
			return nil
		default:
			// Parameter status updates, notices and the like are not acted upon.
		}
	}
}

func queryStrForLog(query string) string {
	const size = 4096
	if len(query) > size {
		return query[:size] + fmt.Sprintf("(len: %d)", len(query))
	}
	return query
}

package obwire

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hugozhu/obclient/config"
	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/logutil"
	"github.com/hugozhu/obclient/metrics"
)

// Handshake drives the connection from idle to ready. It sends the startup
// message, drains the server's greeting until ready-for-query and validates
// the authentication outcome. A transport handed out from a pool has already
// been through this under a previous owner and skips straight to ready.
func (c *Conn) Handshake(ctx context.Context) error {
	if c.transport.ReusedCount() > 0 {
		logutil.Logger(ctx).Debug("reusing pooled connection, skipping handshake",
			zap.Uint32("conn", c.ConnectionID),
			zap.Int("reused", c.transport.ReusedCount()))
		atomic.StoreInt32(&c.status, statusConnected)
		metrics.ConnGauge.Inc()
		return nil
	}

	err := c.handshake(ctx)
	metrics.HandshakeCounter.WithLabelValues(metrics.RetLabel(err)).Inc()
	if err != nil {
		logutil.Logger(ctx).Warn("handshake failed",
			zap.Uint32("conn", c.ConnectionID),
			zap.Error(err))
		return err
	}
	atomic.StoreInt32(&c.status, statusConnected)
	metrics.ConnGauge.Inc()
	return nil
}

func (c *Conn) handshake(ctx context.Context) error {
	if err := c.pkt.WriteStartup(c.cfg.Params); err != nil {
		return errors.Annotate(err, "send startup message")
	}

	// The first reply decides the handshake outcome, but the stream is drained
	// to the ready-for-query marker either way so a failed handshake still
	// leaves the wire at a message boundary.
	authTag, authPayload, err := c.pkt.ReadPacket()
	if err != nil {
		return errors.Annotate(err, "receive startup reply")
	}

	limit := c.cfg.MaxDrainPackets
	if limit == 0 {
		limit = config.DefMaxDrainPackets
	}
	tag := authTag
	for drained := uint(0); tag != msgReadyForQueryZ; drained++ {
		if drained >= limit {
			return ErrDrainLimit.GenWithStackByArgs(limit)
		}
		if tag, _, err = c.pkt.ReadPacket(); err != nil {
			return errors.Annotate(err, "drain startup stream")
		}
	}

	if authTag != msgAuthResultR {
		return ErrUnexpectedPacket.GenWithStackByArgs(authTag)
	}
	status, err := newReadBuffer(authPayload).getUint32()
	if err != nil {
		return errors.Trace(err)
	}
	if status != authStatusOK {
		return ErrAuthFailed.GenWithStackByArgs(status)
	}
	return nil
}

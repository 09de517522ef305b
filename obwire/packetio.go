package obwire

import (
	"bufio"
	"io"
	"time"

	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/metrics"
)

const defaultWriterSize = 16 * 1024

// Outbound packets carry a trailing NUL after the payload and count it in the
// length field: tag:1 | length:4 | payload | 0x00, length = len(payload)+5.
// The trailing NUL is a quirk of the target server's dialect and is not
// present on inbound packets, which are tag:1 | length:4 | payload:(length-4).
const (
	lengthFieldLen     = 4
	outboundTrailerLen = 1

	// maxPacketSize caps the declared payload size so a corrupt length
	// field cannot drive an arbitrarily large allocation.
	maxPacketSize = 1 << 24
)

// PacketIO is a helper to read and write data in packet format.
type PacketIO struct {
	transport Transport
	*bufio.Writer

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewPacketIO creates a PacketIO on the transport. Zero timeouts disable
// the corresponding deadline.
func NewPacketIO(t Transport, readTimeout, writeTimeout time.Duration) *PacketIO {
	p := &PacketIO{
		transport:    t,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
	p.Writer = bufio.NewWriterSize(t, defaultWriterSize)
	return p
}

func (p *PacketIO) flush() error {
	err := p.Writer.Flush()
	if err != nil {
		return errors.Trace(err)
	}
	return err
}

func (p *PacketIO) setReadTimeout() {
	if p.readTimeout > 0 {
		if err := p.transport.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
			panic(err)
		}
	}
}

func (p *PacketIO) setWriteTimeout() {
	if p.writeTimeout > 0 {
		if err := p.transport.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
			panic(err)
		}
	}
}

// WritePacket frames and sends one tagged packet as a single write.
func (p *PacketIO) WritePacket(tag byte, payload []byte) error {
	var b writeBuffer
	b.writeByte(tag)
	b.putUint32(uint32(len(payload)) + lengthFieldLen + outboundTrailerLen)
	b.write(payload)
	b.writeByte(0)

	p.setWriteTimeout()
	if _, err := p.Writer.Write(b.bytes()); err != nil {
		return errors.Trace(err)
	}
	if err := p.flush(); err != nil {
		return err
	}
	metrics.PacketIOCounter.WithLabelValues(metrics.DirWrite).Inc()
	metrics.PacketIOBytes.WithLabelValues(metrics.DirWrite).Add(float64(len(payload)))
	return nil
}

// WriteStartup sends the untagged startup message announcing protocol
// version 3.0 and the connection parameters.
func (p *PacketIO) WriteStartup(params map[string]string) error {
	var body writeBuffer
	body.putUint16(protoVersionMajor)
	body.putUint16(protoVersionMinor)
	for k, v := range params {
		body.writeString(k)
		body.writeString(v)
	}
	body.writeByte(0)

	var b writeBuffer
	b.putUint32(uint32(len(body.bytes())) + lengthFieldLen)
	b.write(body.bytes())

	p.setWriteTimeout()
	if _, err := p.Writer.Write(b.bytes()); err != nil {
		return errors.Trace(err)
	}
	if err := p.flush(); err != nil {
		return err
	}
	metrics.PacketIOCounter.WithLabelValues(metrics.DirWrite).Inc()
	metrics.PacketIOBytes.WithLabelValues(metrics.DirWrite).Add(float64(len(body.bytes())))
	return nil
}

// ReadPacket reads exactly one complete tagged packet from the transport.
func (p *PacketIO) ReadPacket() (byte, []byte, error) {
	p.setReadTimeout()

	var header [1 + lengthFieldLen]byte
	if _, err := io.ReadFull(p.transport, header[:]); err != nil {
		return 0, nil, errors.Trace(err)
	}
	tag := header[0]
	length, err := newReadBuffer(header[1:]).getUint32()
	if err != nil {
		return 0, nil, errors.Trace(err)
	}
	if length < 4 || length-4 > maxPacketSize {
		return 0, nil, ErrInvalidLength.GenWithStackByArgs(length)
	}

	var payload []byte
	if length > 4 {
		payload = make([]byte, length-4)
		p.setReadTimeout()
		if _, err := io.ReadFull(p.transport, payload); err != nil {
			return 0, nil, errors.Trace(err)
		}
	}
	metrics.PacketIOCounter.WithLabelValues(metrics.DirRead).Inc()
	metrics.PacketIOBytes.WithLabelValues(metrics.DirRead).Add(float64(len(payload)))
	return tag, payload, nil
}

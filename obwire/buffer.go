package obwire

import (
	"bytes"
	"encoding/binary"

	"github.com/hugozhu/obclient/hack"
)

// readBuffer is a cursor over one inbound packet payload.
// get* methods consume from the front and fail loudly on short input;
// a short fixed-width read is never silently decoded as zero.
type readBuffer struct {
	msg []byte
}

func newReadBuffer(payload []byte) *readBuffer {
	return &readBuffer{msg: payload}
}

func (b *readBuffer) remaining() int {
	return len(b.msg)
}

func (b *readBuffer) getUint16() (uint16, error) {
	if len(b.msg) < 2 {
		return 0, ErrTruncated.GenWithStackByArgs(2, len(b.msg))
	}
	v := binary.BigEndian.Uint16(b.msg[:2])
	b.msg = b.msg[2:]
	return v, nil
}

func (b *readBuffer) getUint32() (uint32, error) {
	if len(b.msg) < 4 {
		return 0, ErrTruncated.GenWithStackByArgs(4, len(b.msg))
	}
	v := binary.BigEndian.Uint32(b.msg[:4])
	b.msg = b.msg[4:]
	return v, nil
}

func (b *readBuffer) getInt32() (int32, error) {
	v, err := b.getUint32()
	return int32(v), err
}

// getString reads a null-terminated string. The returned string shares the
// payload's memory; payloads are never reused so this is safe.
func (b *readBuffer) getString() (string, error) {
	pos := bytes.IndexByte(b.msg, 0)
	if pos == -1 {
		return "", ErrMalformedPacket.GenWithStackByArgs("NUL terminator not found")
	}
	s := hack.String(b.msg[:pos])
	b.msg = b.msg[pos+1:]
	return s, nil
}

func (b *readBuffer) getBytes(n int) ([]byte, error) {
	if len(b.msg) < n {
		return nil, ErrTruncated.GenWithStackByArgs(n, len(b.msg))
	}
	v := b.msg[:n]
	b.msg = b.msg[n:]
	return v, nil
}

func (b *readBuffer) skip(n int) error {
	_, err := b.getBytes(n)
	return err
}

// writeBuffer assembles one outbound message.
type writeBuffer struct {
	buf []byte
}

func (b *writeBuffer) putUint16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

func (b *writeBuffer) putUint32(v uint32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
}

// writeString appends a null-terminated string.
func (b *writeBuffer) writeString(s string) {
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
}

func (b *writeBuffer) writeByte(c byte) {
	b.buf = append(b.buf, c)
}

func (b *writeBuffer) write(p []byte) {
	b.buf = append(b.buf, p...)
}

func (b *writeBuffer) bytes() []byte {
	return b.buf
}

// EncodeUint16 returns the big-endian encoding of v.
func EncodeUint16(v uint16) []byte {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], v)
	return p[:]
}

// EncodeUint32 returns the big-endian encoding of v.
func EncodeUint32(v uint32) []byte {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], v)
	return p[:]
}

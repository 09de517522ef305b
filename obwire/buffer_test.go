package obwire

import (
	. "github.com/pingcap/check"

	"github.com/hugozhu/obclient/testleak"
)

var _ = Suite(&testBufferSuite{})

type testBufferSuite struct{}

func (s *testBufferSuite) TestUint16RoundTrip(c *C) {
	defer testleak.AfterTest(c)()
	for _, v := range []uint16{0, 1, 0x00ff, 0x0100, 0x7fff, 0xffff} {
		got, err := newReadBuffer(EncodeUint16(v)).getUint16()
		c.Assert(err, IsNil)
		c.Assert(got, Equals, v)
	}
}

func (s *testBufferSuite) TestUint32RoundTrip(c *C) {
	defer testleak.AfterTest(c)()
	for _, v := range []uint32{0, 1, 0xff, 0x10000, 0x7fffffff, 0xffffffff} {
		got, err := newReadBuffer(EncodeUint32(v)).getUint32()
		c.Assert(err, IsNil)
		c.Assert(got, Equals, v)
	}
}

func (s *testBufferSuite) TestUint32Truncated(c *C) {
	defer testleak.AfterTest(c)()
	// A short read must fail loudly, never decode as zero.
	for n := 0; n < 4; n++ {
		_, err := newReadBuffer(make([]byte, n)).getUint32()
		c.Assert(err, NotNil)
		c.Assert(ErrTruncated.Equal(err), IsTrue)
	}
}

func (s *testBufferSuite) TestUint16Truncated(c *C) {
	defer testleak.AfterTest(c)()
	_, err := newReadBuffer([]byte{1}).getUint16()
	c.Assert(ErrTruncated.Equal(err), IsTrue)
}

func (s *testBufferSuite) TestGetString(c *C) {
	defer testleak.AfterTest(c)()
	b := newReadBuffer([]byte("id\x00name\x00rest"))
	first, err := b.getString()
	c.Assert(err, IsNil)
	c.Assert(first, Equals, "id")
	second, err := b.getString()
	c.Assert(err, IsNil)
	c.Assert(second, Equals, "name")
	// The cursor sits just past the second terminator.
	c.Assert(b.remaining(), Equals, 4)

	_, err = b.getString()
	c.Assert(ErrMalformedPacket.Equal(err), IsTrue)
}

func (s *testBufferSuite) TestGetBytes(c *C) {
	defer testleak.AfterTest(c)()
	b := newReadBuffer([]byte("abcdef"))
	v, err := b.getBytes(4)
	c.Assert(err, IsNil)
	c.Assert(string(v), Equals, "abcd")
	_, err = b.getBytes(3)
	c.Assert(ErrTruncated.Equal(err), IsTrue)
}

func (s *testBufferSuite) TestGetInt32Negative(c *C) {
	defer testleak.AfterTest(c)()
	v, err := newReadBuffer([]byte{0xff, 0xff, 0xff, 0xff}).getInt32()
	c.Assert(err, IsNil)
	c.Assert(v, Equals, int32(-1))
}

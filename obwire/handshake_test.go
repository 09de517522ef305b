package obwire

import (
	"context"

	. "github.com/pingcap/check"

	"github.com/hugozhu/obclient/testleak"
)

var _ = Suite(&testHandshakeSuite{})

type testHandshakeSuite struct{}

func (s *testHandshakeSuite) TestHandshakeSuccess(c *C) {
	defer testleak.AfterTest(c)()
	conn, t := connOn(
		inbound(msgAuthResultR, authResult(0)),
		inbound(msgReadyForQueryZ, nil),
	)
	c.Assert(conn.Handshake(context.Background()), IsNil)
	c.Assert(conn.Connected(), IsTrue)
	// The whole greeting is consumed.
	c.Assert(t.in.Len(), Equals, 0)

	// The startup message went out first.
	c.Assert(t.out.Bytes(), DeepEquals, []byte{0, 0, 0, 9, 0, 3, 0, 0, 0})
}

func (s *testHandshakeSuite) TestHandshakeAuthRejected(c *C) {
	defer testleak.AfterTest(c)()
	conn, t := connOn(
		inbound(msgAuthResultR, authResult(1)),
		inbound(msgReadyForQueryZ, nil),
	)
	err := conn.Handshake(context.Background())
	c.Assert(ErrAuthFailed.Equal(err), IsTrue)
	c.Assert(conn.Connected(), IsFalse)
	// The greeting is still drained to the ready marker.
	c.Assert(t.in.Len(), Equals, 0)
}

func (s *testHandshakeSuite) TestHandshakeUnexpectedFirstPacket(c *C) {
	defer testleak.AfterTest(c)()
	conn, _ := connOn(inbound(msgReadyForQueryZ, nil))
	err := conn.Handshake(context.Background())
	c.Assert(ErrUnexpectedPacket.Equal(err), IsTrue)
	c.Assert(conn.Connected(), IsFalse)
}

func (s *testHandshakeSuite) TestHandshakeDrainsNoise(c *C) {
	defer testleak.AfterTest(c)()
	conn, _ := connOn(
		inbound(msgAuthResultR, authResult(0)),
		inbound('S', []byte("server_version\x001.0\x00")),
		inbound('K', []byte{0, 0, 0, 1, 0, 0, 0, 2}),
		inbound(msgReadyForQueryZ, nil),
	)
	c.Assert(conn.Handshake(context.Background()), IsNil)
	c.Assert(conn.Connected(), IsTrue)
}

func (s *testHandshakeSuite) TestHandshakeDrainBound(c *C) {
	defer testleak.AfterTest(c)()
	chunks := [][]byte{inbound(msgAuthResultR, authResult(0))}
	for i := 0; i < 16; i++ {
		chunks = append(chunks, inbound('N', []byte("notice\x00")))
	}
	conn, _ := connOn(chunks...)
	conn.cfg.MaxDrainPackets = 4
	err := conn.Handshake(context.Background())
	c.Assert(ErrDrainLimit.Equal(err), IsTrue)
	c.Assert(conn.Connected(), IsFalse)
}

func (s *testHandshakeSuite) TestHandshakeTruncatedAuthPayload(c *C) {
	defer testleak.AfterTest(c)()
	conn, _ := connOn(
		inbound(msgAuthResultR, []byte{0, 0}),
		inbound(msgReadyForQueryZ, nil),
	)
	err := conn.Handshake(context.Background())
	c.Assert(ErrTruncated.Equal(err), IsTrue)
}

func (s *testHandshakeSuite) TestHandshakeStreamCut(c *C) {
	defer testleak.AfterTest(c)()
	conn, _ := connOn(inbound(msgAuthResultR, authResult(0)))
	err := conn.Handshake(context.Background())
	c.Assert(err, NotNil)
	c.Assert(conn.Connected(), IsFalse)
}

func (s *testHandshakeSuite) TestReusedTransportSkipsHandshake(c *C) {
	defer testleak.AfterTest(c)()
	t := &testTransport{reused: 1}
	conn := NewConn(testConfig(), t)
	c.Assert(conn.Handshake(context.Background()), IsNil)
	c.Assert(conn.Connected(), IsTrue)
	// Nothing was sent: the previous owner already completed the startup.
	c.Assert(t.out.Len(), Equals, 0)
}

package obwire

import (
	. "github.com/pingcap/check"

	"github.com/hugozhu/obclient/testleak"
)

var _ = Suite(&testMessagesSuite{})

type testMessagesSuite struct{}

func (s *testMessagesSuite) TestDecodeRowDescription(c *C) {
	defer testleak.AfterTest(c)()
	columns, err := decodeRowDescription(rowDescription("id", "name"))
	c.Assert(err, IsNil)
	c.Assert(columns, DeepEquals, []string{"id", "name"})
}

func (s *testMessagesSuite) TestDecodeRowDescriptionTruncatedMeta(c *C) {
	defer testleak.AfterTest(c)()
	var b writeBuffer
	b.putUint16(1)
	b.writeString("id")
	b.write(make([]byte, rowDescriptionMetaLen-1))
	_, err := decodeRowDescription(b.bytes())
	c.Assert(ErrTruncated.Equal(err), IsTrue)
}

func (s *testMessagesSuite) TestDecodeDataRowWithNull(c *C) {
	defer testleak.AfterTest(c)()
	row, err := decodeDataRow(dataRow(nil, []byte("abc")))
	c.Assert(err, IsNil)
	c.Assert(row, HasLen, 2)
	c.Assert(row[0], IsNil)
	c.Assert(string(row[1]), Equals, "abc")
}

func (s *testMessagesSuite) TestDecodeDataRowZeroLengthIsNull(c *C) {
	defer testleak.AfterTest(c)()
	var b writeBuffer
	b.putUint16(1)
	b.putUint32(0)
	row, err := decodeDataRow(b.bytes())
	c.Assert(err, IsNil)
	c.Assert(row, HasLen, 1)
	// A declared length smaller than 1 is NULL, not an empty value.
	c.Assert(row[0], IsNil)
}

func (s *testMessagesSuite) TestDecodeDataRowTruncatedValue(c *C) {
	defer testleak.AfterTest(c)()
	var b writeBuffer
	b.putUint16(1)
	b.putUint32(5)
	b.write([]byte("ab"))
	_, err := decodeDataRow(b.bytes())
	c.Assert(ErrTruncated.Equal(err), IsTrue)
}

func (s *testMessagesSuite) TestDecodeErrorReport(c *C) {
	defer testleak.AfterTest(c)()
	payload := []byte("SERROR\x00C42601\x00Msyntax error\x00\x00")
	serverErr, err := decodeErrorReport(payload)
	c.Assert(err, IsNil)
	c.Assert(serverErr.Severity(), Equals, "ERROR")
	c.Assert(serverErr.Code(), Equals, "42601")
	c.Assert(serverErr.Message(), Equals, "syntax error")
	c.Assert(serverErr.Error(), Equals, "server error: ERROR (42601): syntax error")
}

func (s *testMessagesSuite) TestDecodeErrorReportUnterminated(c *C) {
	defer testleak.AfterTest(c)()
	_, err := decodeErrorReport([]byte("Mno terminator"))
	c.Assert(ErrMalformedPacket.Equal(err), IsTrue)
}

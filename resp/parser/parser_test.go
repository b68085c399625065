package parser

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ignix/interface/resp"
	"ignix/resp/reply"
)

// collectFrames feeds data to TryParse in chunks of the given size and
// returns the encoding of every completed frame, in order.
func collectFrames(t *testing.T, data []byte, chunkSize int) [][]byte {
	t.Helper()
	var frames [][]byte
	buf := make([]byte, 0, len(data))
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		buf = append(buf, data[i:end]...)
		for {
			msg, consumed, err := TryParse(buf)
			require.NoError(t, err)
			if consumed == 0 {
				break
			}
			frames = append(frames, msg.ToBytes())
			buf = buf[consumed:]
		}
	}
	require.Empty(t, buf, "stream should end on a frame boundary")
	return frames
}

func TestStreamingEquivalence(t *testing.T) {
	stream := []byte("" +
		"*1\r\n$4\r\nPING\r\n" +
		"*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n" +
		"*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n" +
		"+OK\r\n" +
		":42\r\n" +
		"$-1\r\n" +
		"*2\r\n$1\r\ny\r\n$-1\r\n" +
		"$0\r\n\r\n" +
		"-ERR no such key\r\n")

	whole := collectFrames(t, stream, len(stream))
	require.Len(t, whole, 9)
	for _, chunkSize := range []int{1, 2, 3, 7, 16} {
		assert.Equal(t, whole, collectFrames(t, stream, chunkSize), "chunk size %d", chunkSize)
	}
}

func TestTryParseFrames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  resp.Reply
	}{
		{"status", "+OK\r\n", reply.MakeStatusReply("OK")},
		{"error", "-ERR boom\r\n", reply.MakeErrReply("ERR boom")},
		{"integer", ":123\r\n", reply.MakeIntReply(123)},
		{"negative integer", ":-7\r\n", reply.MakeIntReply(-7)},
		{"bulk", "$5\r\nhello\r\n", reply.MakeBulkReply([]byte("hello"))},
		{"empty bulk", "$0\r\n\r\n", reply.MakeBulkReply([]byte{})},
		{"null bulk", "$-1\r\n", reply.MakeNullBulkReply()},
		{"bulk with CRLF body", "$6\r\nab\r\ncd\r\n", reply.MakeBulkReply([]byte("ab\r\ncd"))},
		{"empty array", "*0\r\n", reply.MakeEmptyMultiBulkReply()},
		{"command array", "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n",
			reply.MakeMultiBulkReply([][]byte{[]byte("SET"), []byte("key"), []byte("value")})},
		{"array with null element", "*2\r\n$1\r\ny\r\n$-1\r\n",
			reply.MakeMultiBulkReply([][]byte{[]byte("y"), nil})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, consumed, err := TryParse([]byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, len(tt.input), consumed)
			assert.Equal(t, tt.want.ToBytes(), msg.ToBytes())
		})
	}
}

func TestBoundedConsumption(t *testing.T) {
	first := "*1\r\n$4\r\nPING\r\n"
	data := []byte(first + "*2\r\n$3\r\nGET\r\n$1\r\na\r\n")
	_, consumed, err := TryParse(data)
	require.NoError(t, err)
	assert.Equal(t, len(first), consumed, "must not consume past the first frame")
}

func TestIncompleteFrames(t *testing.T) {
	inputs := []string{
		"*",
		"*2\r\n",
		"*2\r\n$3\r\nGET\r\n",
		"$5\r\nhel",
		"$5\r\nhello",
		"+OK",
		":12",
	}
	for _, input := range inputs {
		msg, consumed, err := TryParse([]byte(input))
		require.NoError(t, err, "input %q", input)
		assert.Nil(t, msg, "input %q", input)
		assert.Zero(t, consumed, "input %q", input)
	}
}

func TestMalformedFrames(t *testing.T) {
	inputs := []string{
		"hello\r\n",
		"*a\r\n",
		"*-2\r\n",
		"$x\r\n",
		"$-5\r\n",
		"$3\r\nabcX\r\n",
		":abc\r\n",
		"*1\r\n:1\r\n", // arrays carry bulk strings only
	}
	for _, input := range inputs {
		_, _, err := TryParse([]byte(input))
		require.Error(t, err, "input %q", input)
		var pe *ProtocolError
		assert.ErrorAs(t, err, &pe, "input %q", input)
	}
}

func TestFrameTooLarge(t *testing.T) {
	oldBulk, oldArray := MaxBulkLen, MaxArrayLen
	MaxBulkLen, MaxArrayLen = 1024, 8
	defer func() {
		MaxBulkLen, MaxArrayLen = oldBulk, oldArray
	}()

	_, _, err := TryParse([]byte("$2048\r\n"))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, _, err = TryParse([]byte("*100\r\n"))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestRoundTrip(t *testing.T) {
	replies := []resp.Reply{
		reply.MakeStatusReply("OK"),
		reply.MakePongReply(),
		reply.MakeIntReply(-42),
		reply.MakeBulkReply([]byte("binary\x00data")),
		reply.MakeNullBulkReply(),
		reply.MakeMultiBulkReply([][]byte{[]byte("MGET"), []byte("x"), nil}),
		reply.MakeErrReply("ERR value is not an integer or out of range"),
	}
	for _, original := range replies {
		encoded := original.ToBytes()
		decoded, consumed, err := TryParse(encoded)
		require.NoError(t, err)
		require.Equal(t, len(encoded), consumed)
		assert.Equal(t, encoded, decoded.ToBytes())
	}
}

func TestParseStream(t *testing.T) {
	data := []byte("*1\r\n$4\r\nPING\r\n+OK\r\n")
	ch := ParseStream(bytes.NewReader(data))

	p := <-ch
	require.NoError(t, p.Err)
	assert.Equal(t, []byte("*1\r\n$4\r\nPING\r\n"), p.Data.ToBytes())

	p = <-ch
	require.NoError(t, p.Err)
	assert.Equal(t, []byte("+OK\r\n"), p.Data.ToBytes())

	p = <-ch
	assert.ErrorIs(t, p.Err, io.EOF)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after the terminal payload")
}

func TestParseStreamTruncated(t *testing.T) {
	data := []byte("*1\r\n$4\r\nPING\r\n*3\r\n$3\r\nSET\r\n$1\r\na")
	ch := ParseStream(bytes.NewReader(data))

	p := <-ch
	require.NoError(t, p.Err)

	p = <-ch
	assert.ErrorIs(t, p.Err, io.ErrUnexpectedEOF)
}

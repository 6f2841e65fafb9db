package tbytes

import (
	"bytes"
	"io"
	"strings"
)

func NewBytesReader(bs []byte) *Reader {
	return &Reader{
		Reader: *bytes.NewReader(bs),
		buf:    bs,
	}
}

// Offset reports the position of the cursor from the start of the buffer.
func (b *Reader) Offset() int {
	return len(b.buf) - b.Len()
}

func (b *Reader) ReadBytes(n int) ([]byte, error) {
	bs := make([]byte, n)
	// add return early to avoid EOF error
	// when reader's pointer reach end of file
	// while the number of next bytes to read is 0
	if n == 0 {
		return bs, nil
	}
	read, err := b.Read(bs)
	if err != nil {
		return nil, err
	}
	if read < n {
		return nil, io.ErrUnexpectedEOF
	}
	return bs, nil
}

// View returns the next n bytes as a sub-slice of the original buffer and
// advances the cursor past them. The returned slice aliases the input of
// NewBytesReader.
func (b *Reader) View(n int) ([]byte, error) {
	start := b.Offset()
	if n == 0 {
		return b.buf[start:start], nil
	}
	if start+n > len(b.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	if _, err := b.Seek(int64(n), io.SeekCurrent); err != nil {
		return nil, err
	}
	return b.buf[start : start+n], nil
}

// ReadUntil consumes bytes up to and including the first occurrence of any
// byte in delims, and returns the bytes before the delimiter along with the
// delimiter itself. Reaching the end of the buffer before a delimiter is an
// io.ErrUnexpectedEOF.
func (b *Reader) ReadUntil(delims string) (string, byte, error) {
	token := make([]byte, 0, 16)
	for {
		c, err := b.ReadByte()
		if err != nil {
			return string(token), 0, io.ErrUnexpectedEOF
		}
		if strings.IndexByte(delims, c) >= 0 {
			return string(token), c, nil
		}
		token = append(token, c)
	}
}

// PeekByte returns the next byte without moving the cursor.
func (b *Reader) PeekByte() (byte, error) {
	c, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	if err := b.UnreadByte(); err != nil {
		return 0, err
	}
	return c, nil
}

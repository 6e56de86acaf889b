// Package console is the runtime's console I/O capability. Compiled programs
// receive a Console instead of touching process-wide standard streams, so the
// same program can run against real stdio, a pipe, or a test buffer.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/joshuapare/rtcore/rt/cstr"
)

// ErrBadLength indicates a non-positive line buffer length.
var ErrBadLength = errors.New("console: line length must be positive")

// Console writes to an output stream and reads from an input stream.
// It is not safe for concurrent use.
type Console struct {
	out   io.Writer
	in    *bufio.Reader
	codec *codec
}

// Option configures a Console.
type Option func(*Console) error

// New returns a console writing to out and reading from in. in may be nil
// for output-only consoles.
func New(out io.Writer, in io.Reader, opts ...Option) (*Console, error) {
	c := &Console{out: out}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Console) write(s string) error {
	if c.codec != nil {
		enc, err := c.codec.encode(s)
		if err != nil {
			return err
		}
		_, err = c.out.Write(enc)
		return err
	}
	_, err := io.WriteString(c.out, s)
	return err
}

// PutChar writes a single byte.
func (c *Console) PutChar(ch byte) error {
	_, err := c.out.Write([]byte{ch})
	return err
}

// Print writes s.
func (c *Console) Print(s string) error {
	return c.write(s)
}

// Println writes s followed by a newline.
func (c *Console) Println(s string) error {
	if err := c.write(s); err != nil {
		return err
	}
	return c.PutChar('\n')
}

// PrintC writes a NUL-terminated byte string. A nil string prints nothing.
func (c *Console) PrintC(s []byte) error {
	if s == nil {
		return nil
	}
	return c.write(string(s[:cstr.Strlen(s)]))
}

// PrintI32 writes v in decimal.
func (c *Console) PrintI32(v int32) error {
	return c.write(strconv.FormatInt(int64(v), 10))
}

// PrintlnI32 writes v in decimal followed by a newline.
func (c *Console) PrintlnI32(v int32) error {
	return c.Println(strconv.FormatInt(int64(v), 10))
}

// PrintI64 writes v in decimal.
func (c *Console) PrintI64(v int64) error {
	return c.write(strconv.FormatInt(v, 10))
}

// PrintlnI64 writes v in decimal followed by a newline.
func (c *Console) PrintlnI64(v int64) error {
	return c.Println(strconv.FormatInt(v, 10))
}

// PrintF64 writes v with six fractional digits, like C's "%f".
func (c *Console) PrintF64(v float64) error {
	return c.write(fmt.Sprintf("%f", v))
}

// PrintlnF64 writes v like PrintF64 followed by a newline.
func (c *Console) PrintlnF64(v float64) error {
	return c.Println(fmt.Sprintf("%f", v))
}

// GetChar reads one byte. It returns io.EOF at end of input.
func (c *Console) GetChar() (byte, error) {
	if c.in == nil {
		return 0, io.EOF
	}
	return c.in.ReadByte()
}

// ReadLine reads one line of input and returns at most maxLen-1 bytes of it
// with trailing carriage returns and newlines removed. The rest of an
// over-long line stays unread for the next call. It returns io.EOF when the
// input is exhausted before any byte is read.
func (c *Console) ReadLine(maxLen int) (string, error) {
	if maxLen <= 0 {
		return "", ErrBadLength
	}
	if c.in == nil {
		return "", io.EOF
	}

	line := make([]byte, 0, min(maxLen-1, 256))
	read := 0
	for len(line) < maxLen-1 {
		ch, err := c.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && read > 0 {
				break
			}
			return "", err
		}
		read++
		if ch == '\n' {
			break
		}
		line = append(line, ch)
	}
	for len(line) > 0 && (line[len(line)-1] == '\r' || line[len(line)-1] == '\n') {
		line = line[:len(line)-1]
	}

	if c.codec != nil {
		return c.codec.decode(line)
	}
	return string(line), nil
}

package vm

// input.go defines the console input seam: a byte source that can be both
// polled without blocking (for KBSR) and read with blocking semantics (for
// the GETC and IN traps).

import (
	"bufio"
	"errors"
	"io"
)

// byteSource is the console input abstraction shared by the keyboard device
// and the GETC/IN trap routines.
type byteSource interface {
	io.Reader

	// Poll attempts to read one byte without blocking. ok is false, with a
	// nil error, if no byte is currently available.
	Poll() (b byte, ok bool, err error)
}

// bufferedSource adapts any io.Reader that is already fully buffered (a
// bytes.Buffer, a strings.Reader, a file whose contents are read eagerly) so
// both Read and Poll never block on it. It is the byte source used by tests
// and by any caller that supplies its input up front.
type bufferedSource struct {
	r *bufio.Reader
}

// NewBufferedSource wraps r as a byte source. Poll does not block as long as
// r itself does not; on a reader that waits for data, such as os.Stdin
// attached to a pipe, Poll waits too.
func NewBufferedSource(r io.Reader) byteSource {
	return &bufferedSource{r: bufio.NewReader(r)}
}

func (b *bufferedSource) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *bufferedSource) Poll() (byte, bool, error) {
	c, err := b.r.ReadByte()

	switch {
	case errors.Is(err, io.EOF):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	default:
		return c, true, nil
	}
}

// Package console adapts a Unix terminal for use as the virtual machine's
// keyboard input and display output, putting the terminal into raw mode so
// keystrokes reach the machine one byte at a time, unechoed and
// unbuffered.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal.
var ErrNoTTY = errors.New("console: not a tty")

// Console puts a terminal into raw mode for the duration of a program run
// and exposes it as the machine's console I/O.
type Console struct {
	in    *os.File
	out   io.Writer
	fd    int
	state *term.State
}

// Open puts sin into raw mode and returns a Console reading from sin and
// writing to sout. Callers must call Close to restore the terminal.
func Open(sin, sout *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTTY, err)
	}

	cons := &Console{
		fd:    fd,
		in:    sin,
		out:   sout,
		state: state,
	}

	if err := cons.setNonblocking(); err != nil {
		_ = term.Restore(fd, state)
		return nil, err
	}

	return cons, nil
}

// setNonblocking configures VMIN/VTIME so a read returns immediately with
// whatever bytes (possibly none) are already in the terminal's input
// queue, which is what Poll needs to be non-blocking.
func (c *Console) setNonblocking() error {
	if err := syscall.SetNonblock(c.fd, true); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	termios, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}

	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termios); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	return nil
}

// Read implements io.Reader with blocking semantics: it retries until at
// least one byte is read, for the GETC/IN trap routines.
func (c *Console) Read(p []byte) (int, error) {
	for {
		n, err := c.in.Read(p)

		switch {
		case errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK):
			continue
		case err != nil:
			return n, err
		case n == 0:
			continue
		default:
			return n, nil
		}
	}
}

// Poll implements the non-blocking read the keyboard status register
// needs: it returns immediately, reporting ok=false if no byte is
// currently queued.
func (c *Console) Poll() (byte, bool, error) {
	var buf [1]byte

	n, err := c.in.Read(buf[:])

	switch {
	case errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	case n == 0:
		return 0, false, nil
	default:
		return buf[0], true, nil
	}
}

// Write implements io.Writer, for the display device and the
// OUT/PUTS/IN/PUTSP trap routines.
func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

// Close restores the terminal to the state it was in before Open.
func (c *Console) Close() error {
	return term.Restore(c.fd, c.state)
}

package ustar

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Open opens the named archive for reading.
//
// The returned error wraps ErrIoUnavailable if the file cannot be opened.
func Open(name string) (*os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIoUnavailable, err)
	}

	return f, nil
}

// CopyBufferWithContext is a custom implementation of io.CopyBuffer that is cancellable via context.
//
// Similar to io.CopyBuffer, if buf is nil, a new buffer of size 32*1024 is created. The context is checked after every
// write so partial content may have been written when ctx.Err is returned.
func CopyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		buf = make([]byte, 32*1024)
	}

	for {
		nr, rerr := src.Read(buf)

		if nr > 0 {
			switch nw, werr := dst.Write(buf[0:nr]); {
			case werr != nil:
				return written, werr
			case nw != nr:
				return written, io.ErrShortWrite
			default:
				written += int64(nw)
			}

			select {
			case <-ctx.Done():
				return written, ctx.Err()
			default:
			}
		}

		switch {
		case rerr == io.EOF:
			return written, nil
		case rerr != nil:
			return written, rerr
		}
	}
}

package scan

import (
	"errors"
	"fmt"
	"io"
)

// RecordSize is the size in bytes of every header and content unit of a tar archive.
const RecordSize = 512

// Record is exactly one 512-byte unit of a tar archive.
type Record [RecordSize]byte

var zeroRecord Record

// IsZero returns true if every byte of the record is zero.
func (r *Record) IsZero() bool {
	return *r == zeroRecord
}

// ErrShortRead is returned by ReadRecord if the stream ended after 1 to 511 bytes of a record.
var ErrShortRead = errors.New("short read")

// ReadRecord reads exactly one Record from src into r.
//
// io.EOF is returned only if src was exhausted before any byte of the record was read, meaning the stream ended on a
// record boundary. If src ended partway through the record, the returned error wraps ErrShortRead. Any other read
// error is returned as-is.
func ReadRecord(src io.Reader, r *Record) (n int, err error) {
	switch n, err = io.ReadFull(src, r[:]); {
	case err == nil:
		return n, nil
	case err == io.EOF:
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return n, fmt.Errorf("%w: expected %d bytes, got %d", ErrShortRead, RecordSize, n)
	default:
		return n, err
	}
}

// paddedSize rounds size up to the nearest multiple of RecordSize.
func paddedSize(size int64) int64 {
	if rem := size % RecordSize; rem != 0 {
		return size + RecordSize - rem
	}

	return size
}

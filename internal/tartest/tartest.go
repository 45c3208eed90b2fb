// Package tartest builds tar archives record by record for tests.
//
// Unlike archive/tar, the builder can produce every malformed layout the scanner has to recognise: lone zero blocks,
// truncated records and content, bad magic, and unsupported type flags.
package tartest

import (
	"bytes"
	"fmt"
)

const recordSize = 512

// Option modifies a header record after its default fields have been written.
type Option func(hdr []byte)

// WithTypeflag overrides the type flag.
func WithTypeflag(flag byte) Option {
	return func(hdr []byte) {
		hdr[156] = flag
	}
}

// WithMagic overrides the 6-byte magic field and clears the version field.
func WithMagic(magic string) Option {
	return func(hdr []byte) {
		clear(hdr[257:265])
		copy(hdr[257:263], magic)
	}
}

// WithPOSIXMagic writes the POSIX "ustar\x00" magic and "00" version.
func WithPOSIXMagic() Option {
	return func(hdr []byte) {
		copy(hdr[257:265], "ustar\x0000")
	}
}

// WithRawSize writes the given text verbatim into the size field.
func WithRawSize(size string) Option {
	return func(hdr []byte) {
		clear(hdr[124:136])
		copy(hdr[124:136], size)
	}
}

// WithPrefix writes the POSIX prefix field.
func WithPrefix(prefix string) Option {
	return func(hdr []byte) {
		copy(hdr[345:500], prefix)
	}
}

// WithMode overrides the permission bits.
func WithMode(mode int64) Option {
	return func(hdr []byte) {
		copy(hdr[100:108], fmt.Sprintf("%07o\x00", mode))
	}
}

// WithModTime overrides the modification time in seconds since the Unix epoch.
func WithModTime(sec int64) Option {
	return func(hdr []byte) {
		copy(hdr[136:148], fmt.Sprintf("%011o\x00", sec))
	}
}

// Header returns one GNU-style header record for a regular file of the given size.
func Header(name string, size int64, optFns ...Option) []byte {
	hdr := make([]byte, recordSize)
	copy(hdr[0:100], name)
	copy(hdr[100:108], "0000644\x00")
	copy(hdr[108:116], "0001750\x00")
	copy(hdr[116:124], "0001750\x00")
	copy(hdr[124:136], fmt.Sprintf("%011o\x00", size))
	copy(hdr[136:148], fmt.Sprintf("%011o\x00", 1700000000))
	hdr[156] = '0'
	copy(hdr[257:265], "ustar  \x00")
	copy(hdr[265:297], "tartest\x00")
	copy(hdr[297:329], "tartest\x00")

	for _, fn := range optFns {
		fn(hdr)
	}

	copy(hdr[148:156], "        ")
	var sum int64
	for _, b := range hdr {
		sum += int64(b)
	}
	copy(hdr[148:156], fmt.Sprintf("%06o\x00 ", sum))

	return hdr
}

// File returns the header record followed by the content padded to a whole number of records.
func File(name string, content []byte, optFns ...Option) []byte {
	b := Header(name, int64(len(content)), optFns...)
	b = append(b, content...)
	if rem := len(content) % recordSize; rem != 0 {
		b = append(b, make([]byte, recordSize-rem)...)
	}

	return b
}

// Zero returns n all-zero records.
func Zero(n int) []byte {
	return make([]byte, n*recordSize)
}

// Archive concatenates the parts.
func Archive(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

package scan

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Field offsets and lengths within a header Record.
const (
	nameOffset, nameLen     = 0, 100
	modeOffset, modeLen     = 100, 8
	sizeOffset, sizeLen     = 124, 12
	mtimeOffset, mtimeLen   = 136, 12
	typeflagOffset          = 156
	magicOffset, magicLen   = 257, 6
	prefixOffset, prefixLen = 345, 155
)

const defaultMode os.FileMode = 0644

const (
	// MagicGNU is the magic written by GNU tar, followed by a " \x00" version.
	MagicGNU = "ustar "
	// MagicPOSIX is the magic written by POSIX ustar encoders, followed by a "00" version.
	MagicPOSIX = "ustar\x00"
)

// Type flags recognised as regular files. All other values are unsupported.
const (
	TypeReg  byte = '0'
	TypeRegA byte = '\x00'
)

// Type classifies a member.
type Type int

const (
	TypeRegular Type = iota
	TypeUnsupported
)

func (t Type) String() string {
	if t == TypeRegular {
		return "regular file"
	}

	return "unsupported"
}

var (
	// ErrMalformedHeader is returned if a record that must be a header cannot be parsed as one.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrNotATarArchive is returned if the header magic does not identify a tar archive.
	ErrNotATarArchive = errors.New("not a tar archive")

	// ErrUnsupportedType is wrapped by UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported header type")
)

// UnsupportedTypeError is returned by Decode if the header has a type flag other than a regular file.
type UnsupportedTypeError struct {
	Typeflag byte
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%v: type flag %q", ErrUnsupportedType, e.Typeflag)
}

func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// Header is the decoded metadata of one member.
type Header struct {
	// Name is the member's path inside the archive; it is never empty.
	Name string
	// Size is the number of content bytes; it is never negative.
	Size int64
	// Mode holds the permission bits. It defaults to 0644 if the field was empty or unreadable.
	Mode os.FileMode
	// ModTime is the zero time if the field was empty or unreadable.
	ModTime time.Time
	// Typeflag is the raw type discriminator.
	Typeflag byte
	// Magic is either MagicGNU or MagicPOSIX.
	Magic string
}

// Type returns TypeRegular for regular files, TypeUnsupported otherwise.
func (h *Header) Type() Type {
	switch h.Typeflag {
	case TypeReg, TypeRegA:
		return TypeRegular
	default:
		return TypeUnsupported
	}
}

// ContentRecords returns the number of whole records spanned by the member's content, padding included.
func (h *Header) ContentRecords() int64 {
	return paddedSize(h.Size) / RecordSize
}

// Decode interprets the record as either a member header or an all-zero block.
//
// zero is true iff every byte of the record is zero, in which case hdr is meaningless. Otherwise, the returned error
// wraps ErrMalformedHeader if the name or size fields are unusable, is ErrNotATarArchive if the magic does not match,
// or is an *UnsupportedTypeError if the member is not a regular file.
func Decode(r *Record) (hdr Header, zero bool, err error) {
	// only a record with an empty name can be a zero block so the full comparison is skipped otherwise.
	if r[nameOffset] == 0 {
		if r.IsZero() {
			return hdr, true, nil
		}

		return hdr, false, fmt.Errorf("%w: empty name in non-zero record", ErrMalformedHeader)
	}

	switch magic := string(r[magicOffset : magicOffset+magicLen]); magic {
	case MagicGNU, MagicPOSIX:
		hdr.Magic = magic
	default:
		return hdr, false, ErrNotATarArchive
	}

	hdr.Name = cstring(r[nameOffset : nameOffset+nameLen])
	if hdr.Magic == MagicPOSIX {
		if prefix := cstring(r[prefixOffset : prefixOffset+prefixLen]); prefix != "" {
			hdr.Name = prefix + "/" + hdr.Name
		}
	}

	if hdr.Size, err = parseOctal(r[sizeOffset : sizeOffset+sizeLen]); err != nil {
		return hdr, false, fmt.Errorf("%w: size: %w", ErrMalformedHeader, err)
	}

	hdr.Mode = defaultMode
	if mode, err := parseOctal(r[modeOffset : modeOffset+modeLen]); err == nil && mode != 0 {
		hdr.Mode = os.FileMode(mode) & os.ModePerm
	}

	if mtime, err := parseOctal(r[mtimeOffset : mtimeOffset+mtimeLen]); err == nil && mtime != 0 {
		hdr.ModTime = time.Unix(mtime, 0)
	}

	hdr.Typeflag = r[typeflagOffset]
	if hdr.Type() != TypeRegular {
		return hdr, false, &UnsupportedTypeError{Typeflag: hdr.Typeflag}
	}

	return hdr, false, nil
}

// cstring returns the bytes of b up to the first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

// parseOctal parses a NUL/space padded octal text field as a non-negative integer.
func parseOctal(b []byte) (int64, error) {
	s := strings.Trim(cstring(b), " ")
	if s == "" {
		return 0, errors.New("empty numeric field")
	}

	v, err := strconv.ParseUint(s, 8, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid octal %q", s)
	}

	return int64(v), nil
}

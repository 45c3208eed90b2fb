package scan

import (
	"errors"
	"io"
	"iter"
)

// ErrAdvanced is returned when reading a Member after the Scanner has moved past it.
var ErrAdvanced = errors.New("scanner has advanced past member")

// Options customises NewScanner.
type Options struct {
	// DisableSeek forces content that is not read to be consumed with reads even if the source implements io.Seeker.
	DisableSeek bool
}

// Scanner walks a tar archive one record at a time.
//
// Use Next or All to retrieve the members in order. The content of each member can be read from the returned Member
// until the next call to Next; whatever is left of the member's padded content is then consumed by the Scanner. The
// scan stops at the first failure; State and Err then describe how it ended.
type Scanner struct {
	src io.Reader

	// seeker and available are only set if src is seekable; available is the number of bytes between the starting
	// position of src and its end.
	seeker    io.Seeker
	available int64

	state      State
	err        error
	offset     int64
	zeroOffset int64
	members    int
	cur        *Member
	rec        Record
}

// NewScanner returns a Scanner reading from the current position of src.
func NewScanner(src io.Reader, optFns ...func(*Options)) *Scanner {
	opts := &Options{}
	for _, fn := range optFns {
		fn(opts)
	}

	s := &Scanner{src: src}

	if rs, ok := src.(io.Seeker); ok && !opts.DisableSeek {
		if start, err := rs.Seek(0, io.SeekCurrent); err == nil {
			if end, err := rs.Seek(0, io.SeekEnd); err == nil {
				if _, err = rs.Seek(start, io.SeekStart); err == nil {
					s.seeker, s.available = rs, end-start
				}
			}
		}
	}

	return s
}

// Forward scans the tar archive from src.
//
// The members are returned as an iterator which is stopped at the clean end of the archive or at the first error,
// which is yielded with a nil Member. The iterator cannot be restarted; open src again to rescan.
func Forward(src io.Reader, optFns ...func(*Options)) iter.Seq2[*Member, error] {
	return NewScanner(src, optFns...).All()
}

// All returns an iterator over the remaining members.
//
// The iterator yields every member until the end of the archive. If the scan fails, the error is yielded last with a
// nil Member.
func (s *Scanner) All() iter.Seq2[*Member, error] {
	return func(yield func(*Member, error) bool) {
		for {
			switch m, err := s.Next(); {
			case err == io.EOF:
				return
			case err != nil:
				yield(nil, err)
				return
			default:
				if !yield(m, nil) {
					return
				}
			}
		}
	}
}

// Next advances to the next member.
//
// Next returns io.EOF once the end-of-archive marker has been read. Any other error is an *Error and is returned again
// on every subsequent call.
func (s *Scanner) Next() (*Member, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.cur != nil {
		if err := s.skip(s.cur); err != nil {
			return nil, err
		}
	}

	for !s.state.Terminal() {
		recOffset := s.offset

		n, err := ReadRecord(s.src, &s.rec)
		s.offset += int64(n)

		var (
			e     event
			cause error
			hdr   Header
			zero  bool
		)

		switch {
		case err == io.EOF:
			e = eventEOF
		case errors.Is(err, ErrShortRead):
			e, cause = eventShortRead, err
		case err != nil:
			e, cause = eventReadError, err
		default:
			switch hdr, zero, cause = Decode(&s.rec); {
			case zero:
				e = eventZeroBlock
			case cause == nil:
				e = eventHeader
			case errors.Is(cause, ErrNotATarArchive):
				e = eventNotATarArchive
			case errors.Is(cause, ErrUnsupportedType):
				e = eventUnsupportedType
			default:
				e = eventMalformedHeader
			}
		}

		prev := s.state

		var kind Kind
		s.state, kind = transition(prev, e, s.members)

		switch {
		case kind == KindLoneZeroBlock:
			if e != eventShortRead {
				cause = nil
			}
			return nil, s.fail(s.state, &Error{Kind: kind, Offset: s.zeroOffset, Err: cause})
		case kind != KindNone:
			return nil, s.fail(s.state, &Error{Kind: kind, Offset: recOffset, Err: cause})
		case e == eventZeroBlock && prev == StateScanning:
			s.zeroOffset = recOffset
		case e == eventHeader:
			s.cur = &Member{
				Header:    hdr,
				Offset:    recOffset,
				s:         s,
				remaining: hdr.Size,
				pad:       paddedSize(hdr.Size) - hdr.Size,
			}
			return s.cur, nil
		}
	}

	if s.state == StateEndOfArchive {
		return nil, io.EOF
	}

	return nil, s.err
}

// skip consumes whatever is left of the member's padded content extent.
func (s *Scanner) skip(m *Member) error {
	s.cur, m.s = nil, nil

	n := m.remaining + m.pad
	if n == 0 {
		s.members++
		return nil
	}

	if s.seeker != nil {
		if s.offset+n > s.available {
			return s.fail(StateTruncated, &Error{Kind: KindTruncated, Offset: s.available, Err: io.ErrUnexpectedEOF})
		}

		if _, err := s.seeker.Seek(n, io.SeekCurrent); err != nil {
			return s.fail(StateFailed, &Error{Kind: KindIO, Offset: s.offset, Err: err})
		}

		s.offset += n
		s.members++
		return nil
	}

	written, err := io.CopyN(io.Discard, s.src, n)
	s.offset += written

	switch {
	case err == io.EOF:
		return s.fail(StateTruncated, &Error{Kind: KindTruncated, Offset: s.offset, Err: io.ErrUnexpectedEOF})
	case err != nil:
		return s.fail(StateFailed, &Error{Kind: KindIO, Offset: s.offset, Err: err})
	}

	s.members++
	return nil
}

func (s *Scanner) fail(state State, err error) error {
	s.state, s.err = state, err
	return err
}

// State returns the current state of the scan.
func (s *Scanner) State() State {
	return s.state
}

// Err returns the error that terminated the scan, or nil if the scan has not failed.
func (s *Scanner) Err() error {
	return s.err
}

// Offset returns the number of bytes consumed from the source so far.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Records returns the number of whole records consumed from the source so far.
func (s *Scanner) Records() int64 {
	return s.offset / RecordSize
}

// Members returns the number of members whose content extent has been consumed in full.
func (s *Scanner) Members() int {
	return s.members
}

// Member is one regular-file entry of the archive.
//
// Member is an io.Reader over exactly Size bytes of content. It is only valid until the next call to Scanner.Next;
// reads after that return ErrAdvanced.
type Member struct {
	Header

	// Offset is the byte offset of the member's header record.
	Offset int64

	s         *Scanner
	remaining int64
	pad       int64
}

// Read reads the member's content, never its padding.
//
// If the content is cut short, the scan fails with the returned *Error.
func (m *Member) Read(p []byte) (int, error) {
	if m.s == nil {
		return 0, ErrAdvanced
	}
	if m.s.err != nil {
		return 0, m.s.err
	}
	if m.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > m.remaining {
		p = p[:m.remaining]
	}

	n, err := m.s.src.Read(p)
	m.s.offset += int64(n)
	m.remaining -= int64(n)

	switch {
	case err == io.EOF && m.remaining > 0:
		return n, m.s.fail(StateTruncated, &Error{Kind: KindTruncated, Offset: m.s.offset, Err: io.ErrUnexpectedEOF})
	case err == io.EOF:
		return n, nil
	case err != nil:
		return n, m.s.fail(StateFailed, &Error{Kind: KindIO, Offset: m.s.offset, Err: err})
	default:
		return n, nil
	}
}

// Open returns an io.Reader over the member's content.
//
// The reader shares its position with the Member.
func (m *Member) Open() (io.Reader, error) {
	if m.s == nil {
		return nil, ErrAdvanced
	}

	return struct{ io.Reader }{m}, nil
}

// WriteTo writes the member's remaining content to dst.
//
// Exactly Size bytes are written if the member has not been read from before; trailing padding is never written.
func (m *Member) WriteTo(dst io.Writer) (int64, error) {
	if m.s == nil {
		return 0, ErrAdvanced
	}

	return io.Copy(dst, struct{ io.Reader }{m})
}

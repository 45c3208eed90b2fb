package scan

import (
	"errors"
	"fmt"
)

// State is the position of the Scanner in the archive-level protocol.
type State int

const (
	// StateScanning expects either a member header or the first of the two terminating zero blocks.
	StateScanning State = iota
	// StateOneZeroSeen has seen exactly one zero block and requires a second one.
	StateOneZeroSeen
	// StateEndOfArchive is the only successful terminal state.
	StateEndOfArchive
	// StateMalformed is terminal; the Kind of the Error tells what was wrong.
	StateMalformed
	// StateTruncated is terminal; the stream ended in the middle of a record or a member's content.
	StateTruncated
	// StateNotATarArchive is terminal; the first header's magic did not identify a tar archive.
	StateNotATarArchive
	// StateFailed is terminal; the underlying stream returned an error other than end-of-stream.
	StateFailed
)

var stateNames = [...]string{
	StateScanning:       "scanning",
	StateOneZeroSeen:    "one zero block seen",
	StateEndOfArchive:   "end of archive",
	StateMalformed:      "malformed",
	StateTruncated:      "truncated",
	StateNotATarArchive: "not a tar archive",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal returns true if no further record will be read in this state.
func (s State) Terminal() bool {
	return s != StateScanning && s != StateOneZeroSeen
}

// event is the classification of one attempt to read and decode a header record.
type event int

const (
	eventHeader event = iota
	eventZeroBlock
	eventEOF
	eventShortRead
	eventReadError
	eventMalformedHeader
	eventNotATarArchive
	eventUnsupportedType
)

// transition is the Scanner's state machine.
//
// members is the number of members already scanned in full; it decides whether an archive that ends on a record
// boundary without the two zero blocks is accepted. The returned Kind is KindNone unless next is a failure state.
func transition(cur State, e event, members int) (next State, kind Kind) {
	switch cur {
	case StateScanning:
		switch e {
		case eventHeader:
			return StateScanning, KindNone
		case eventZeroBlock:
			return StateOneZeroSeen, KindNone
		case eventEOF:
			if members > 0 {
				return StateEndOfArchive, KindNone
			}
			return StateTruncated, KindTruncated
		case eventShortRead:
			return StateTruncated, KindTruncated
		case eventReadError:
			return StateFailed, KindIO
		case eventMalformedHeader:
			return StateMalformed, KindMalformedHeader
		case eventNotATarArchive:
			return StateNotATarArchive, KindNotATarArchive
		case eventUnsupportedType:
			return StateMalformed, KindUnsupportedType
		}

	case StateOneZeroSeen:
		switch e {
		case eventZeroBlock:
			return StateEndOfArchive, KindNone
		case eventReadError:
			return StateFailed, KindIO
		default:
			return StateMalformed, KindLoneZeroBlock
		}
	}

	return cur, KindNone
}

// Kind names the reason a scan failed.
type Kind int

const (
	KindNone Kind = iota
	KindTruncated
	KindMalformedHeader
	KindLoneZeroBlock
	KindNotATarArchive
	KindUnsupportedType
	KindIO
)

var (
	// ErrTruncated is returned if the archive ends in the middle of a record or of a member's content.
	ErrTruncated = errors.New("truncated archive")

	// ErrLoneZeroBlock is returned if a zero block is not immediately followed by a second one.
	ErrLoneZeroBlock = errors.New("lone zero block")

	// ErrRead is returned if the underlying stream fails.
	ErrRead = errors.New("read error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindTruncated:
		return ErrTruncated
	case KindMalformedHeader:
		return ErrMalformedHeader
	case KindLoneZeroBlock:
		return ErrLoneZeroBlock
	case KindNotATarArchive:
		return ErrNotATarArchive
	case KindUnsupportedType:
		return ErrUnsupportedType
	case KindIO:
		return ErrRead
	default:
		return nil
	}
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}

	return "none"
}

// Error describes why and where a scan stopped.
//
// Error unwraps to one of ErrTruncated, ErrMalformedHeader, ErrLoneZeroBlock, ErrNotATarArchive, ErrUnsupportedType,
// or ErrRead depending on Kind, as well as to the underlying cause if there is one.
type Error struct {
	Kind Kind
	// Offset is the byte offset of the record (or content byte) at which the failure was detected.
	Offset int64
	// Err is the underlying cause, may be nil.
	Err error
}

// Record returns the zero-based index of the record containing Offset.
func (e *Error) Record() int64 {
	return e.Offset / RecordSize
}

func (e *Error) Error() string {
	switch sentinel := e.Kind.sentinel(); {
	case e.Err == nil:
		return fmt.Sprintf("%s at offset %d (record %d)", e.Kind, e.Offset, e.Record())
	case errors.Is(e.Err, sentinel):
		return fmt.Sprintf("%v at offset %d (record %d)", e.Err, e.Offset, e.Record())
	default:
		return fmt.Sprintf("%s at offset %d (record %d): %v", e.Kind, e.Offset, e.Record(), e.Err)
	}
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if err := e.Kind.sentinel(); err != nil {
		errs = append(errs, err)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

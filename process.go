package ustar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/ustar/scan"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

const defaultBufferSize = 32 * 1024

// Creator persists the content of extracted members.
type Creator interface {
	// Create opens a new sink for the member's content.
	//
	// Process closes the sink before moving on to the next member, whether the content was written in full or not.
	Create(hdr scan.Header) (io.WriteCloser, error)
}

// Options customises Process.
type Options struct {
	// Extract forwards the content of every selected member to Creator.
	Extract bool

	// Creator is required if Extract is true.
	Creator Creator

	// Verbose lists selected members while extracting. Selected members are always listed if Extract is false.
	Verbose bool

	// Stdout receives the names of listed members, one per line. Defaults to os.Stdout.
	Stdout io.Writer

	// Logger receives periodic progress while extracting. Nothing is logged if nil.
	Logger *log.Logger

	// ProgressBar if given will be added every byte written to Creator.
	ProgressBar *progressbar.ProgressBar

	// ScanOptions are passed to scan.NewScanner.
	ScanOptions []func(*scan.Options)
}

// Summary describes what Process has done so far.
type Summary struct {
	// Scanned is the number of members read from the archive.
	Scanned int
	// Selected is the number of scanned members that matched the Selection.
	Selected int
	// Extracted is the number of content bytes written to Creator.
	Extracted int64
	// Missing lists the requested names that were never seen, only populated after a successful scan.
	Missing []string
	// State is the state the scanner stopped in.
	State scan.State
}

// Process scans the archive from src, listing and/or extracting the members matched by sel.
//
// A nil sel matches every member. The scan stops at the first error, which is returned along with the Summary of what
// was done until then; partially extracted files are left as-is. If the scan reaches the end of the archive but some
// requested names were never seen, a *NotFoundError is returned.
func Process(ctx context.Context, src io.Reader, sel *Selection, optFns ...func(*Options)) (sum Summary, err error) {
	opts := &Options{Stdout: os.Stdout}
	for _, fn := range optFns {
		fn(opts)
	}

	if opts.Extract && opts.Creator == nil {
		return sum, errors.New("extract requires a Creator")
	}
	if sel == nil {
		sel = NewSelection()
	}

	s := scan.NewScanner(src, opts.ScanOptions...)
	defer func() {
		sum.State = s.State()
	}()

	var (
		sometimes = rate.Sometimes{Interval: 5 * time.Second}
		buf       = make([]byte, defaultBufferSize)
	)

	for m, err := range s.All() {
		if err != nil {
			return sum, err
		}

		sum.Scanned++

		if !sel.Match(m.Name) {
			continue
		}

		sum.Selected++

		if !opts.Extract || opts.Verbose {
			if _, err = fmt.Fprintln(opts.Stdout, m.Name); err != nil {
				return sum, fmt.Errorf("write member name error: %w", err)
			}
		}

		if opts.Extract {
			n, err := extract(ctx, opts, m, buf)
			sum.Extracted += n
			if err != nil {
				return sum, err
			}

			if opts.Logger != nil {
				sometimes.Do(func() {
					opts.Logger.Printf("extracted %d files (%s) so far", sum.Selected, humanize.Bytes(uint64(sum.Extracted)))
				})
			}
		}

		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}
	}

	if sum.Missing = sel.Missing(); len(sum.Missing) != 0 {
		return sum, &NotFoundError{Names: sum.Missing}
	}

	return sum, nil
}

// extract forwards the member's content to a new sink from opts.Creator, closing the sink before returning.
func extract(ctx context.Context, opts *Options, m *scan.Member, buf []byte) (int64, error) {
	w, err := opts.Creator.Create(m.Header)
	if err != nil {
		return 0, fmt.Errorf(`%w: create file "%s" error: %w`, ErrIoUnavailable, m.Name, err)
	}

	var dst io.Writer = w
	if opts.ProgressBar != nil {
		dst = io.MultiWriter(w, opts.ProgressBar)
	}

	n, err := CopyBufferWithContext(ctx, dst, m, buf)
	closeErr := w.Close()

	var se *scan.Error
	switch {
	case err == nil && closeErr == nil:
		return n, nil
	case err == nil:
		return n, fmt.Errorf(`%w: close file "%s" error: %w`, ErrIoUnavailable, m.Name, closeErr)
	case errors.As(err, &se), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return n, err
	default:
		return n, fmt.Errorf(`%w: write to file "%s" error: %w`, ErrIoUnavailable, m.Name, err)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/ustar"
	"github.com/nguyengg/ustar/internal"
	"github.com/nguyengg/ustar/internal/config"
	"github.com/nguyengg/ustar/internal/extract"
	"github.com/nguyengg/ustar/scan"
)

// Ustar lists or extracts the regular files of a USTAR archive.
type Ustar struct {
	File      flags.Filename `short:"f" long:"file" description:"the archive to read, - for standard input" required:"yes"`
	List      bool           `short:"t" long:"list" description:"list the names of the archive's members"`
	Extract   bool           `short:"x" long:"extract" description:"extract the archive's members"`
	Verbose   bool           `short:"v" long:"verbose" description:"list the names of the extracted members"`
	Directory flags.Filename `short:"C" long:"directory" description:"extract into this directory instead of the working directory"`
	NoClobber bool           `long:"no-clobber" description:"fail instead of overwriting existing files"`
	Progress  bool           `long:"progress" description:"show a progress bar while extracting"`
	Args      struct {
		Names []string `positional-arg-name:"name" description:"only list or extract members with these exact names"`
	} `positional-args:"yes"`

	stdin     io.Reader
	stdout    io.Writer
	loader    *config.Loader
	configDir string
}

// NewParser creates the command-line parser that populates the returned Ustar.
func NewParser() (*flags.Parser, *Ustar) {
	c := &Ustar{}

	p := flags.NewParser(c, flags.Default)
	p.Name = "ustar"
	p.Usage = "-f archive (-t | -x) [OPTIONS] [name...]"

	return p, c
}

// Execute runs the command until the archive has been fully processed or the process is interrupted.
func (c *Ustar) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	return c.run(ctx)
}

func (c *Ustar) run(ctx context.Context) (err error) {
	ctx = internal.WithPrefixLogger(ctx, internal.Prefix(c.File))
	logger := internal.Logger(ctx)
	defer func() {
		c.report(ctx, err)
	}()

	if c.List == c.Extract {
		return errors.New("exactly one of -t or -x must be given")
	}

	loader := c.loader
	if loader == nil {
		loader = config.DefaultLoader
	}
	configDir := c.configDir
	if configDir == "" {
		configDir = "."
	}
	if path, err := loader.Load(ctx, configDir); err != nil {
		return fmt.Errorf(`load config "%s" error: %w`, path, err)
	}
	cfg := loader.ForExtract()

	var src io.Reader
	if c.File == "-" {
		if src = c.stdin; src == nil {
			src = os.Stdin
		}
	} else {
		f, err := ustar.Open(string(c.File))
		if err != nil {
			return err
		}
		defer f.Close()

		src = f
	}

	optFn := func(opts *ustar.Options) {
		opts.Extract = c.Extract
		opts.Verbose = c.Verbose || cfg.Verbose
		opts.Logger = logger
		if c.stdout != nil {
			opts.Stdout = c.stdout
		}

		if !c.Extract {
			return
		}

		dir := &extract.Dir{
			Path:        cfg.Directory,
			NoClobber:   c.NoClobber || cfg.NoClobber,
			KeepModTime: cfg.KeepModTime,
		}
		if c.Directory != "" {
			dir.Path = string(c.Directory)
		}
		opts.Creator = dir

		if c.Progress || cfg.Progress {
			opts.ProgressBar = internal.DefaultBytes(-1, "extracting")
		}
	}

	sum, err := ustar.Process(ctx, src, ustar.NewSelection(c.Args.Names...), optFn)
	if err == nil && c.Extract {
		logger.Printf("extracted %d/%d files (%s)", sum.Selected, sum.Scanned, humanize.Bytes(uint64(sum.Extracted)))
	}

	return err
}

// report logs the error that run stopped with.
func (c *Ustar) report(ctx context.Context, err error) {
	logger := internal.Logger(ctx)

	var nfe *ustar.NotFoundError
	switch {
	case err == nil:
	case errors.Is(err, scan.ErrNotATarArchive):
		logger.Printf("warning: %v", err)
	case errors.As(err, &nfe):
		for _, name := range nfe.Names {
			logger.Printf(`"%s": %v`, name, ustar.ErrNameNotFound)
		}
	case errors.Is(err, context.Canceled):
		logger.Printf("interrupted")
	default:
		logger.Printf("error: %v", err)
	}
}

package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/jessevdk/go-flags"
)

// maxPrefixLength is the number of runes of the archive's base name kept in the log prefix.
const maxPrefixLength = 30

// Prefix creates the log prefix for messages about the given archive.
func Prefix(name flags.Filename) string {
	return fmt.Sprintf(`"%s" - `, truncate(filepath.Base(string(name)), maxPrefixLength, "..."))
}

// truncate keeps the first n runes of text, appending suffix only if truncation happens.
func truncate(text string, n int, suffix string) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	rs := []rune(text)
	return string(rs[:max(n, 0)]) + suffix
}

type loggerKey struct{}

// WithPrefixLogger creates a new logger to os.Stderr using the given prefix, then attaches it to context.
func WithPrefixLogger(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, loggerKey{}, log.New(os.Stderr, prefix, 0))
}

// Logger returns the logger attached to the given context, or a logger to os.Stderr without prefix.
func Logger(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return logger
	}

	return log.New(os.Stderr, "", 0)
}

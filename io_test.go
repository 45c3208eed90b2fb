package ustar

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	name := filepath.Join(t.TempDir(), "archive.tar")

	_, err := Open(name)
	assert.ErrorIs(t, err, ErrIoUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(name, []byte("data"), 0644))
	f, err := Open(name)
	require.NoError(t, err)
	assert.NoError(t, f.Close())
}

func TestCopyBufferWithContext(t *testing.T) {
	src := strings.Repeat("0123456789", 1000)

	dst := &bytes.Buffer{}
	n, err := CopyBufferWithContext(context.Background(), dst, iotest.HalfReader(strings.NewReader(src)), make([]byte, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Equal(t, src, dst.String())
}

func TestCopyBufferWithContext_ReadError(t *testing.T) {
	want := errors.New("boom")

	dst := &bytes.Buffer{}
	n, err := CopyBufferWithContext(context.Background(), dst, iotest.TimeoutReader(strings.NewReader("hello")), nil)
	assert.ErrorIs(t, err, iotest.ErrTimeout)
	assert.Equal(t, int64(5), n)

	_, err = CopyBufferWithContext(context.Background(), dst, iotest.ErrReader(want), nil)
	assert.ErrorIs(t, err, want)
}

func TestCopyBufferWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := &bytes.Buffer{}
	n, err := CopyBufferWithContext(ctx, dst, strings.NewReader(strings.Repeat("a", 100)), make([]byte, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(10), n)
}

package scan

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestReadRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantN   int
		wantErr error
	}{
		{
			name:  "full record",
			data:  bytes.Repeat([]byte{'a'}, RecordSize),
			wantN: RecordSize,
		},
		{
			name:  "more than one record",
			data:  bytes.Repeat([]byte{'a'}, RecordSize+10),
			wantN: RecordSize,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: io.EOF,
		},
		{
			name:    "one byte",
			data:    []byte{'a'},
			wantN:   1,
			wantErr: ErrShortRead,
		},
		{
			name:    "511 bytes",
			data:    make([]byte, RecordSize-1),
			wantN:   RecordSize - 1,
			wantErr: ErrShortRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			n, err := ReadRecord(bytes.NewReader(tt.data), &r)
			assert.Equal(t, tt.wantN, n)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Equal(t, tt.data[:RecordSize], r[:])
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadRecord_OneByteReader(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), RecordSize/16)

	var r Record
	n, err := ReadRecord(iotest.OneByteReader(bytes.NewReader(data)), &r)
	assert.NoError(t, err)
	assert.Equal(t, RecordSize, n)
	assert.Equal(t, data, r[:])
}

func TestReadRecord_ReadError(t *testing.T) {
	var r Record
	_, err := ReadRecord(iotest.ErrReader(iotest.ErrTimeout), &r)
	assert.ErrorIs(t, err, iotest.ErrTimeout)
	assert.NotErrorIs(t, err, ErrShortRead)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		size, want int64
	}{
		{0, 0},
		{1, 512},
		{5, 512},
		{511, 512},
		{512, 512},
		{513, 1024},
		{1024, 1024},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, paddedSize(tt.size), "paddedSize(%d)", tt.size)
	}
}

func TestRecord_IsZero(t *testing.T) {
	var r Record
	assert.True(t, r.IsZero())

	r[RecordSize-1] = 1
	assert.False(t, r.IsZero())
}

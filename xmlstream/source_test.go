package xmlstream

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainSource(t *testing.T, src ByteSource) []byte {
	t.Helper()
	var out []byte
	for {
		b, err := src.NextByte()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, b)
	}
}

func TestBlockingSource_ReadsAllBytes(t *testing.T) {
	src := NewBlockingSource(strings.NewReader("hello"))
	assert.Equal(t, []byte("hello"), drainSource(t, src))
}

func TestBlockingSource_EOFIsSticky(t *testing.T) {
	src := NewBlockingSource(strings.NewReader(""))
	_, err := src.NextByte()
	require.Equal(t, io.EOF, err)
	_, err = src.NextByte()
	require.Equal(t, io.EOF, err)
}

func TestCoroutineSource_ReadsAllBytes(t *testing.T) {
	src := NewCoroutineSource(context.Background(), strings.NewReader("hello"))
	defer src.Close()
	assert.Equal(t, []byte("hello"), drainSource(t, src))
}

func TestCoroutineSource_NextByteReturnsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewCoroutineSource(ctx, strings.NewReader(strings.Repeat("x", 1<<20)))
	defer src.Close()

	_, err := src.NextByte()
	require.NoError(t, err)
	cancel()

	// After cancellation the pump goroutine exits; NextByte must still
	// return (never block forever) once the channel drains and closes.
	for i := 0; i < 1<<20; i++ {
		_, err := src.NextByte()
		if err != nil {
			return
		}
	}
	t.Fatal("NextByte never reported stream end after cancellation")
}

package scanbuf

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringEmpty(t *testing.T) {
	b, err := New(1)
	require.NoError(t, err)
	assert.Equal(t, "null", b.String())

	b.NewScan([]float64{1})
	b.GetScan()
	assert.Equal(t, "null", b.String())
}

func TestStringLatestScan(t *testing.T) {
	b, err := New(1)
	require.NoError(t, err)
	b.NewScan([]float64{9, 9})
	b.NewScan([]float64{1.5, 2, -3})

	lines := strings.Split(b.String(), "\n")
	// one line per value, each terminated
	require.Len(t, lines, 182)
	assert.Equal(t, "1.5", lines[0])
	assert.Equal(t, "2", lines[1])
	assert.Equal(t, "-3", lines[2])
	assert.Equal(t, "0", lines[180])
	assert.Equal(t, "", lines[181])
}

func TestWriteTo(t *testing.T) {
	b, err := New(1)
	require.NoError(t, err)
	b.NewScan([]float64{0.25})

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, b.String(), buf.String())
	assert.True(t, strings.HasPrefix(buf.String(), "0.25\n0\n"))
}

// failingWriter accepts limit bytes then fails.
type failingWriter struct {
	limit   int
	written int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.limit {
		n := w.limit - w.written
		w.written = w.limit
		return n, errors.New("disk full")
	}
	w.written += len(p)
	return len(p), nil
}

func TestWriteToCountsAcceptedBytes(t *testing.T) {
	b, err := New(1)
	require.NoError(t, err)
	b.NewScan([]float64{1, 2, 3})

	w := &failingWriter{limit: 5}
	n, err := b.WriteTo(w)
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, int64(5), n)
	assert.Equal(t, w.written, int(n))

	w = &failingWriter{limit: 2}
	b.Clear()
	n, err = b.WriteTo(w)
	assert.Error(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWriteScan(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteScan(&buf, []float64{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "null", buf.String())

	buf.Reset()
	_, err = WriteScan(&buf, []float64{1e21, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "1e+21\n0.5\n", buf.String())
}

func TestParseScan(t *testing.T) {
	scan, err := ParseScan(strings.NewReader("1\n2.5  3\t-4\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3, -4}, scan)

	scan, err = ParseScan(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, scan)

	_, err = ParseScan(strings.NewReader("1 two 3"))
	assert.Error(t, err)
}

func TestParseScanRoundTrip(t *testing.T) {
	b, err := New(0.5)
	require.NoError(t, err)
	b.NewScan([]float64{1.25, 100, 0.001})

	scan, err := ParseScan(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, b.LatestScan(), scan)
}

// Package waveform reads tab-delimited multi-channel waveform files (.dat)
// into per-channel sample traces and derives the shared vertical scale used
// to draw them side by side.
package waveform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Delimiter separates channel fields within a row.
const Delimiter = '\t'

var (
	// ErrEmpty is returned when the input holds no samples at all.
	ErrEmpty = errors.New("waveform: no samples")
	// ErrNoChannels is returned when the first row yields zero channels.
	ErrNoChannels = errors.New("waveform: no channels")
	// ErrShortRow is returned when a row has fewer fields than channels.
	ErrShortRow = errors.New("waveform: row has fewer fields than channels")
	// ErrBadSample is returned when a field is not a floating-point number.
	ErrBadSample = errors.New("waveform: invalid sample")
)

// Dataset is a parsed waveform file: one column per channel, one row per
// time sample.
type Dataset struct {
	Source string
	m      *mat.Dense
}

// ReadRows splits every non-blank line of r on tabs. Fields are returned as
// written; numeric validation happens in Extract.
func ReadRows(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var rows [][]string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, string(Delimiter)))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

// ChannelCount reports how many channels the first row carries. A trailing
// empty (or whitespace-only) field is a delimiter artifact and not counted.
func ChannelCount(rows [][]string) int {
	if len(rows) == 0 {
		return 0
	}
	first := rows[0]
	n := len(first)
	if n > 0 && strings.TrimSpace(first[n-1]) == "" {
		n--
	}
	return n
}

// Extract converts the first n fields of every row into a sample matrix.
func Extract(rows [][]string, n int) (*Dataset, error) {
	if n < 1 {
		return nil, ErrNoChannels
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	data := make([]float64, 0, len(rows)*n)
	for i, row := range rows {
		if len(row) < n {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrShortRow, i+1, len(row), n)
		}
		for j := 0; j < n; j++ {
			field := strings.TrimSpace(row[j])
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %q", ErrBadSample, i+1, j+1, row[j])
			}
			data = append(data, v)
		}
	}
	return &Dataset{m: mat.NewDense(len(rows), n, data)}, nil
}

// Parse runs the full pipeline (tokenize, detect channels, extract) on r.
func Parse(r io.Reader) (*Dataset, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return Extract(rows, ChannelCount(rows))
}

// Load opens and parses the file at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

// Channels returns the channel count.
func (d *Dataset) Channels() int {
	if d == nil || d.m == nil {
		return 0
	}
	_, c := d.m.Dims()
	return c
}

// Samples returns the number of samples per channel.
func (d *Dataset) Samples() int {
	if d == nil || d.m == nil {
		return 0
	}
	r, _ := d.m.Dims()
	return r
}

// Trace returns a copy of channel i (0-based).
func (d *Dataset) Trace(i int) []float64 {
	return mat.Col(nil, i, d.m)
}

// Traces returns every channel in column order.
func (d *Dataset) Traces() [][]float64 {
	out := make([][]float64, d.Channels())
	for i := range out {
		out[i] = d.Trace(i)
	}
	return out
}

// Scale is a shortcut for SharedScale over all traces of d.
func (d *Dataset) Scale(gain float64) (Scale, error) {
	return SharedScale(d.Traces(), gain)
}

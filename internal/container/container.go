// Package container reads and writes the .chaos record: the run header
// followed by the full composite signal.
//
// The format is plain text. Five header lines hold grace, total duration,
// sampling frequency, decimation ratio and epsilon; every remaining
// whitespace-separated token is one signal sample, in order:
//
//	10
//	10.045351473922903
//	44100
//	10
//	0.01
//	0.4521 0.4533 0.4546 ...
//
// Reals are written in shortest round-trip form, so Read(Write(r)) returns
// bit-identical values.
package container

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ErrMalformed indicates a record with missing or unparseable tokens.
var ErrMalformed = errors.New("container: malformed record")

// Record is one persisted transmission.
type Record struct {
	Grace     float64
	Duration  float64
	Frequency float64
	Ratio     int
	Epsilon   float64
	Signal    []float64
}

// NewRecord builds a record and derives its total duration.
func NewRecord(grace, frequency float64, ratio int, epsilon float64, signal []float64) *Record {
	r := &Record{
		Grace:     grace,
		Frequency: frequency,
		Ratio:     ratio,
		Epsilon:   epsilon,
		Signal:    signal,
	}
	r.Duration = r.TotalDuration()
	return r
}

// TotalDuration recomputes the duration from the signal actually held.
func (r *Record) TotalDuration() float64 {
	if r.Frequency == 0 {
		return 0
	}
	return float64(len(r.Signal)) / r.Frequency
}

// Write serializes r. The duration line is always recomputed from the signal.
func Write(w io.Writer, r *Record) error {
	bw := bufio.NewWriterSize(w, 1<<16)

	header := []string{
		formatFloat(r.Grace),
		formatFloat(r.TotalDuration()),
		formatFloat(r.Frequency),
		strconv.Itoa(r.Ratio),
		formatFloat(r.Epsilon),
	}
	for _, line := range header {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	buf := make([]byte, 0, 32)
	for i, s := range r.Signal {
		if i > 0 {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		buf = strconv.AppendFloat(buf[:0], s, 'g', -1, 64)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if len(r.Signal) > 0 {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Read parses a record. It does not check that the header values are
// consistent with each other or with the signal length.
func Read(rd io.Reader) (*Record, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	var header [5]string
	for i := range header {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: header has %d of 5 fields", ErrMalformed, i)
		}
		header[i] = sc.Text()
	}

	r := &Record{}
	fields := []struct {
		name string
		dst  *float64
		tok  string
	}{
		{"grace", &r.Grace, header[0]},
		{"duration", &r.Duration, header[1]},
		{"frequency", &r.Frequency, header[2]},
		{"epsilon", &r.Epsilon, header[4]},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrMalformed, f.name, f.tok)
		}
		*f.dst = v
	}
	ratio, err := strconv.Atoi(header[3])
	if err != nil {
		return nil, fmt.Errorf("%w: ratio %q", ErrMalformed, header[3])
	}
	r.Ratio = ratio

	if hint := r.Duration * r.Frequency; hint > 0 && hint < 1<<27 {
		r.Signal = make([]float64, 0, int(hint))
	}
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d %q", ErrMalformed, len(r.Signal), sc.Text())
		}
		r.Signal = append(r.Signal, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return r, nil
}

// Load opens and reads the record at path.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	r, err := Read(bufio.NewReaderSize(f, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read container %s: %w", path, err)
	}
	return r, nil
}

// Save writes r to path atomically: a temp file in the same directory is
// renamed over path only after a complete write.
func Save(path string, r *Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("create container: %w", err)
	}
	if err := Write(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write container %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write container %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write container %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

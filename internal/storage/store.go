package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

// Store is a ledger of encrypt and decrypt runs, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Mode      string             `json:"mode"`
	Timestamp time.Time          `json:"timestamp"`
	Input     string             `json:"input"`
	Output    string             `json:"output"`
	Seed      int64              `json:"seed"`
	Grace     float64            `json:"grace"`
	Frequency float64            `json:"frequency"`
	Ratio     int                `json:"ratio"`
	Epsilon   float64            `json:"epsilon"`
	Samples   int                `json:"samples"`
	System    map[string]float64 `json:"system"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save records meta under a fresh id, along with an optional trace of
// samples. ID and Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, trace []float64) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	// metadata goes last: List only sees runs whose files are complete
	if len(trace) > 0 {
		err := writeFile(filepath.Join(runDir, traceFile), func(w io.Writer) error {
			cw := csv.NewWriter(w)
			if err := cw.Write([]string{"index", "value"}); err != nil {
				return err
			}
			for i, v := range trace {
				row := []string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		})
		if err != nil {
			return "", err
		}
	}

	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}

	return meta.ID, nil
}

// writeFile fills a temp file next to path and renames it into place once
// fill and Close have both succeeded.
func writeFile(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = fill(tmp)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// List returns all readable runs, oldest first. A missing ledger is empty.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace returns the samples saved with a run, or nil when none were.
func (s *Store) LoadTrace(runID string) ([]float64, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	trace := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		trace = append(trace, v)
	}
	return trace, nil
}

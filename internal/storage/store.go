// Package storage persists solve runs under a data directory, one
// directory per run with a metadata file and a CSV of the steady
// state, so results can be listed, re-plotted and exported later.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
)

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
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Strategy   string    `json:"strategy"`
	StatusCode int       `json:"status_code"`
	Magnitude  float64   `json:"magnitude"`
	Iterations int       `json:"iterations"`
	History    []float64 `json:"history,omitempty"`
}

// Save writes one run. The run ID is derived from the model name and
// the wall clock.
func (s *Store) Save(m *model.Descriptor, strategy string, ys num.Vec, st steadystate.Status, out *steadystate.Output) (string, error) {
	runID := fmt.Sprintf("%s_%d", m.Name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      m.Name,
		Timestamp:  time.Now(),
		Strategy:   strategy,
		StatusCode: int(st.Code),
		Magnitude:  st.Magnitude,
	}
	if out != nil {
		meta.Iterations = out.Iterations
		meta.History = out.History
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "steady_state.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"variable", "value"}); err != nil {
		return "", err
	}
	for i, v := range ys {
		row := []string{m.VarName(i), strconv.FormatFloat(v, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ExportJSON writes the run metadata to w-accessible path as a single
// JSON document including the steady-state values.
func (s *Store) ExportJSON(runID, destPath string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	values, err := s.loadValues(runID)
	if err != nil {
		return err
	}

	doc := struct {
		RunMetadata
		SteadyState map[string]float64 `json:"steady_state"`
	}{RunMetadata: *meta, SteadyState: values}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0644)
}

func (s *Store) loadValues(runID string) (map[string]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "steady_state.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64)
	for i, row := range rows {
		if i == 0 || len(row) != 2 {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad value %q: %w", runID, row[1], err)
		}
		values[row[0]] = v
	}
	return values, nil
}

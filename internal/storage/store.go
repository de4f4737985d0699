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

	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/session"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var samplesHeader = []string{"time", "detected", "x", "y", "baseline", "decision", "offset", "calibration"}

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
	ID            string             `json:"id"`
	Source        string             `json:"source"`
	Timestamp     time.Time          `json:"timestamp"`
	DeadZone      float64            `json:"dead_zone"`
	Step          float64            `json:"step"`
	LandmarkIndex int                `json:"landmark_index"`
	Frames        int                `json:"frames"`
	Skipped       int                `json:"skipped"`
	Calibrations  int                `json:"calibrations"`
	FinalOffset   float64            `json:"final_offset"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its id. ID and Timestamp in meta are
// filled in; the result's counters override the matching metadata fields.
func (s *Store) Save(meta RunMetadata, result *session.Result) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%s", meta.Source, uuid.NewString()[:8])
	meta.Frames = result.Frames
	meta.Skipped = result.Skipped
	meta.Calibrations = result.Calibrations
	meta.FinalOffset = result.FinalOffset
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, meta, result.Records); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return meta.ID, nil
}

// writeSamples is replaced in tests to simulate a failed write.
var writeSamples = WriteRecordsCSV

func writeRun(runDir string, meta RunMetadata, records []session.Record) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := writeSamples(csvFile, records); err != nil {
		return err
	}
	return csvFile.Sync()
}

// WriteRecordsCSV writes records in the samples.csv layout.
func WriteRecordsCSV(out io.Writer, records []session.Record) error {
	w := csv.NewWriter(out)

	if err := w.Write(samplesHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			strconv.FormatFloat(r.Time.Seconds(), 'f', 6, 64),
			strconv.FormatBool(r.Detected),
			strconv.FormatFloat(r.Point.X, 'f', 6, 64),
			strconv.FormatFloat(r.Point.Y, 'f', 6, 64),
			strconv.FormatFloat(r.Baseline, 'f', 6, 64),
			r.Decision.Direction.String(),
			strconv.FormatFloat(r.Offset, 'f', 3, 64),
			strconv.FormatBool(r.Calibration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
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

// LoadRecords reads the per-frame samples of a run. Malformed rows are
// reported with their line number.
func (s *Store) LoadRecords(runID string) ([]session.Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(samplesHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return []session.Record{}, nil
	}

	records := make([]session.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+2, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(row []string) (session.Record, error) {
	var rec session.Record
	var err error

	floats := make([]float64, 0, 5)
	for _, idx := range []int{0, 2, 3, 4, 6} {
		v, perr := strconv.ParseFloat(row[idx], 64)
		if perr != nil {
			return rec, perr
		}
		floats = append(floats, v)
	}

	rec.Time = time.Duration(floats[0] * float64(time.Second)).Round(time.Microsecond)
	rec.Point = headscroll.Point{X: floats[1], Y: floats[2]}
	rec.Baseline = floats[3]
	rec.Offset = floats[4]

	if rec.Detected, err = strconv.ParseBool(row[1]); err != nil {
		return rec, err
	}
	if rec.Calibration, err = strconv.ParseBool(row[7]); err != nil {
		return rec, err
	}
	if rec.Decision.Direction, err = headscroll.ParseDirection(row[5]); err != nil {
		return rec, err
	}
	return rec, nil
}

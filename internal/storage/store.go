package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	logger  *zap.Logger
}

// New returns a store rooted at baseDir; a leading ~ is expanded.
func New(baseDir string, logger *zap.Logger) (*Store, error) {
	dir, err := homedir.Expand(baseDir)
	if err != nil {
		return nil, fmt.Errorf("expand data dir %q: %w", baseDir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: dir, logger: logger.Named("storage")}, nil
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Params    dynamo.Params      `json:"params"`
	Reason    dynamo.StopReason  `json:"reason"`
	Launch    *dynamo.Launch     `json:"launch,omitempty"`
	Samples   int                `json:"samples"`
	Clamped   int                `json:"clamped"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newRunID(label string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", label, now.Unix(), uuid.NewString()[:8])
}

// Save writes metadata.json and samples.csv into a fresh run directory and
// returns the run id.
func (s *Store) Save(label string, result *dynamo.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	if label == "" {
		label = "run"
	}

	now := time.Now()
	runID := newRunID(label, now)
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: now,
		Params:    result.Params,
		Reason:    result.Reason,
		Launch:    result.Launch,
		Samples:   len(result.Samples),
		Clamped:   result.Clamped,
		Metrics:   result.Metrics,
	}

	data, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteSamplesCSV(csvFile, result.Samples); err != nil {
		return "", fmt.Errorf("write samples: %w", err)
	}

	s.logger.Info("saved run",
		zap.String("run_id", runID),
		zap.Int("samples", len(result.Samples)),
		zap.Stringer("reason", result.Reason))
	return runID, nil
}

// List returns every readable run, oldest first.
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
			s.logger.Debug("skipping run directory", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSamplesCSV(f)
}

// LoadResult reassembles a stored run.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	return &dynamo.Result{
		Params:  meta.Params,
		Samples: samples,
		Launch:  meta.Launch,
		Reason:  meta.Reason,
		Clamped: meta.Clamped,
		Metrics: meta.Metrics,
	}, nil
}

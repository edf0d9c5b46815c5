package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/tradocflow/tradocflow/internal/core/detect"
)

// maxScans bounds the retained scan history.
const maxScans = 20

// ErrNoScans is returned when no scan result has been saved yet.
var ErrNoScans = errors.New("no scan results saved")

// ScanFile is the root JSON structure stored on disk.
type ScanFile struct {
	Scans []detect.FolderScanResult `json:"scans"`
}

// ScanStore persists folder scan results to a JSON file, newest first.
type ScanStore struct {
	path string
	mu   sync.RWMutex
}

// NewScanStore creates a JSON file scan store at the given path.
func NewScanStore(path string) *ScanStore {
	return &ScanStore{path: path}
}

// Save prepends a scan result, pruning the oldest beyond the store cap.
func (s *ScanStore) Save(ctx context.Context, result detect.FolderScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	file.Scans = append([]detect.FolderScanResult{result}, file.Scans...)
	if len(file.Scans) > maxScans {
		file.Scans = file.Scans[:maxScans]
	}

	return s.save(file)
}

// Latest returns the most recent scan result.
// Returns ErrNoScans when nothing has been saved.
func (s *ScanStore) Latest(ctx context.Context) (detect.FolderScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return detect.FolderScanResult{}, err
	}
	if len(file.Scans) == 0 {
		return detect.FolderScanResult{}, ErrNoScans
	}

	return file.Scans[0], nil
}

// List returns all retained scan results, newest first.
func (s *ScanStore) List(ctx context.Context) ([]detect.FolderScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	return file.Scans, nil
}

func (s *ScanStore) load() (ScanFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ScanFile{}, nil
		}
		return ScanFile{}, err
	}

	if len(data) == 0 {
		return ScanFile{}, nil
	}

	var file ScanFile
	if err := json.Unmarshal(data, &file); err != nil {
		return ScanFile{}, err
	}

	return file, nil
}

func (s *ScanStore) save(file ScanFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
